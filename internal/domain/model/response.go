package model

import (
	"encoding/json"
)

// APIResponse is the page shape shared by the paginated API
// endpoints. Key casing varies by endpoint (comment listing is
// snake_case, item listings are camelCase), so decoding accepts both.
type APIResponse struct {
	StatusCode int
	Cursor     int64
	HasMore    bool
	Total      int
	Comments   []*Comment
	ItemList   []*LightVideo

	// user/list only.
	UserList  []UserListEntry
	MinCursor int64

	// search/general/full/ only.
	Data     []SearchItem
	SearchID string
}

type UserListEntry struct {
	User  User       `json:"user"`
	Stats *UserStats `json:"stats,omitempty"`
}

// SearchItem wraps one general-search result. Type 1 is a video.
type SearchItem struct {
	Type int        `json:"type"`
	Item LightVideo `json:"item"`
}

const searchItemTypeVideo = 1

// IsVideo reports whether the search result carries a video record.
func (s SearchItem) IsVideo() bool { return s.Type == searchItemTypeVideo }

func (r *APIResponse) UnmarshalJSON(data []byte) error {
	var wire struct {
		StatusCodeSnake *int          `json:"status_code"`
		StatusCodeCamel *int          `json:"statusCode"`
		Cursor          Int64         `json:"cursor"`
		HasMoreSnake    *BoolInt      `json:"has_more"`
		HasMoreCamel    *BoolInt      `json:"hasMore"`
		Total           int           `json:"total"`
		Comments        []*Comment    `json:"comments"`
		ItemListCamel   []*LightVideo `json:"itemList"`
		ItemListSnake   []*LightVideo `json:"item_list"`
		UserList        []UserListEntry `json:"userList"`
		MinCursor       Int64           `json:"minCursor"`
		Data            []SearchItem    `json:"data"`
		Extra           struct {
			LogID string `json:"logid"`
		} `json:"extra"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.StatusCodeSnake != nil:
		r.StatusCode = *wire.StatusCodeSnake
	case wire.StatusCodeCamel != nil:
		r.StatusCode = *wire.StatusCodeCamel
	}
	switch {
	case wire.HasMoreSnake != nil:
		r.HasMore = wire.HasMoreSnake.Bool()
	case wire.HasMoreCamel != nil:
		r.HasMore = wire.HasMoreCamel.Bool()
	}
	r.Cursor = wire.Cursor.Int64()
	r.Total = wire.Total
	r.Comments = wire.Comments
	r.ItemList = wire.ItemListCamel
	if r.ItemList == nil {
		r.ItemList = wire.ItemListSnake
	}
	r.UserList = wire.UserList
	r.MinCursor = wire.MinCursor.Int64()
	r.Data = wire.Data
	r.SearchID = wire.Extra.LogID
	return nil
}

// StatusPage is the status header every embedded page object carries.
type StatusPage struct {
	StatusCode int `json:"statusCode"`
}

type ChallengeInfo struct {
	Challenge *Challenge      `json:"challenge"`
	Stats     *ChallengeStats `json:"stats"`
}

type ChallengePage struct {
	StatusPage
	ChallengeInfo *ChallengeInfo `json:"challengeInfo"`
}

type VideoInfo struct {
	Video *Video `json:"itemStruct"`
}

// VideoDetail is the item/detail/ endpoint response.
type VideoDetail struct {
	StatusPage
	ItemInfo *VideoInfo `json:"itemInfo"`
}

type UserModule struct {
	Users map[string]*User      `json:"users"`
	Stats map[string]*UserStats `json:"stats"`
}

// The three embedded-state shapes extracted from the SIGI_STATE script
// tag of a scraped page.

type VideoResponse struct {
	ItemModule  map[string]*Video   `json:"ItemModule"`
	CommentItem map[string]*Comment `json:"CommentItem"`
	VideoPage   StatusPage          `json:"VideoPage"`
}

type UserResponse struct {
	ItemModule map[string]*LightVideo `json:"ItemModule"`
	UserModule *UserModule            `json:"UserModule"`
	UserPage   StatusPage             `json:"UserPage"`
}

type ChallengeResponse struct {
	ItemModule    map[string]*LightVideo `json:"ItemModule"`
	ChallengePage *ChallengePage         `json:"ChallengePage"`
}
