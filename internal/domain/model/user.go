package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type UserStats struct {
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
	HeartCount     int `json:"heartCount"`
	VideoCount     int `json:"videoCount"`
	DiggCount      int `json:"diggCount"`
}

// LightUser carries the bare minimum needed to look the full record up
// later through the owning client.
type LightUser struct {
	UniqueID string `json:"uniqueId"`
}

type User struct {
	LightUser
	ID             Int64      `json:"id"`
	Nickname       string     `json:"nickname"`
	SecUID         string     `json:"secUid"`
	PrivateAccount bool       `json:"privateAccount"`
	Verified       bool       `json:"verified"`
	Stats          *UserStats `json:"stats,omitempty"`

	// Filled by the client, absent when the lists are private.
	Followers []LightUser `json:"-"`
	Following []LightUser `json:"-"`
	// Videos seeded from the scraped profile page.
	Videos []*LightVideo `json:"-"`
}

// UserRefKind tags which wire shape a UserRef was decoded from.
type UserRefKind int

const (
	// UserRefUniqueID means only the unique id string was present.
	UserRefUniqueID UserRefKind = iota
	// UserRefFull means a full user record was present.
	UserRefFull
)

// UserRef is the "user" field of comments and videos. The API sends
// either a bare unique-id string or a full user object; the tag says
// which, so callers never probe the shape themselves.
type UserRef struct {
	Kind     UserRefKind
	UniqueID string
	User     *User
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		r.Kind = UserRefUniqueID
		return json.Unmarshal(data, &r.UniqueID)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("decode user record: %w", err)
	}
	r.Kind = UserRefFull
	r.User = &u
	r.UniqueID = u.UniqueID
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.Kind == UserRefFull && r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.UniqueID)
}
