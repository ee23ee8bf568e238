package model

// Comment as returned by the comment listing API. Wire keys are
// snake_case on this endpoint.
type Comment struct {
	ID                Int64   `json:"cid"`
	VideoID           Int64   `json:"aweme_id"`
	User              UserRef `json:"user"`
	Text              string  `json:"text"`
	DiggCount         int     `json:"digg_count"`
	ReplyCommentTotal int     `json:"reply_comment_total"`
	AuthorPin         bool    `json:"author_pin"`
	IsAuthorDigged    bool    `json:"is_author_digged"`
	CommentLanguage   string  `json:"comment_language"`

	resolver Resolver
}

// Bind associates the comment with the client that fetched it, so the
// author can be resolved later through the same session.
func (c *Comment) Bind(r Resolver) { c.resolver = r }

// Author returns the lazy handle to the commenting user. The id
// extraction path is picked by the UserRef tag.
func (c *Comment) Author() (*UserGetter, error) {
	if c.resolver == nil {
		return nil, ErrNotBound
	}
	return NewUserGetter(c.resolver, c.User.UniqueID), nil
}
