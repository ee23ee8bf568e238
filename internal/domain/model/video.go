package model

import "context"

type VideoStats struct {
	DiggCount    int `json:"diggCount"`
	ShareCount   int `json:"shareCount"`
	CommentCount int `json:"commentCount"`
	PlayCount    int `json:"playCount"`
	CollectCount int `json:"collectCount"`
}

type VideoData struct {
	Height       int    `json:"height"`
	Width        int    `json:"width"`
	Duration     int    `json:"duration"`
	Ratio        string `json:"ratio"`
	Cover        string `json:"cover"`
	OriginCover  string `json:"originCover"`
	PlayAddr     string `json:"playAddr"`
	DownloadAddr string `json:"downloadAddr"`
}

type MusicData struct {
	ID         Int64  `json:"id"`
	Title      string `json:"title"`
	PlayURL    string `json:"playUrl"`
	AuthorName string `json:"authorName"`
	Duration   int    `json:"duration"`
	Original   bool   `json:"original"`
}

// LightVideo is the listing shape returned by the item-list endpoints
// and the embedded page state.
type LightVideo struct {
	ID         Int64      `json:"id"`
	CreateTime int64      `json:"createTime"`
	Stats      VideoStats `json:"stats"`

	resolver Resolver
}

func (v *LightVideo) Bind(r Resolver) { v.resolver = r }

// Resolve fetches the full record through the owning client.
func (v *LightVideo) Resolve(ctx context.Context) (*Video, error) {
	if v.resolver == nil {
		return nil, ErrNotBound
	}
	return v.resolver.ResolveVideo(ctx, v.ID.Int64())
}

type Video struct {
	LightVideo
	Desc              string           `json:"desc"`
	Author            UserRef          `json:"author"`
	Video             VideoData        `json:"video"`
	Music             MusicData        `json:"music"`
	Challenges        []LightChallenge `json:"challenges"`
	Digged            bool             `json:"digged"`
	ItemCommentStatus int              `json:"itemCommentStatus"`

	// Set by the client after extraction.
	Creator *UserGetter `json:"-"`
	// Comments seeded from the scraped page and its captured API
	// responses; the comment iterator picks up from the API.
	Comments []*Comment `json:"-"`
}

// TagNames lists the challenge (hashtag) names referenced by the
// video, in page order. Input for the finite detail iterator.
func (v *Video) TagNames() []string {
	names := make([]string, 0, len(v.Challenges))
	for _, c := range v.Challenges {
		names = append(names, c.Title)
	}
	return names
}
