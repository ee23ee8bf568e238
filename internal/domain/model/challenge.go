package model

type ChallengeStats struct {
	VideoCount int64 `json:"videoCount"`
	ViewCount  int64 `json:"viewCount"`
}

// LightChallenge is the shape referenced from a video's challenge
// list; only the title is needed to look the full record up.
type LightChallenge struct {
	ID    Int64  `json:"id"`
	Title string `json:"title"`
}

type Challenge struct {
	LightChallenge
	Desc  string          `json:"desc"`
	Stats *ChallengeStats `json:"stats,omitempty"`

	// Videos seeded from the scraped tag page.
	Videos []*LightVideo `json:"-"`

	resolver Resolver
}

func (c *Challenge) Bind(r Resolver) { c.resolver = r }
