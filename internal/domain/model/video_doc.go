package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

const videoIndex = "tiktok_videos"

// VideoDoc is the Elasticsearch projection of a scraped video.
type VideoDoc struct {
	ID           string    `json:"id"`
	Desc         string    `json:"desc"`
	AuthorID     string    `json:"author_id"`
	Tags         []string  `json:"tags"`
	CreateTime   time.Time `json:"create_time"`
	DiggCount    int       `json:"digg_count"`
	ShareCount   int       `json:"share_count"`
	CommentCount int       `json:"comment_count"`
	PlayCount    int       `json:"play_count"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// ToDocument projects the video into its index document.
func (v *Video) ToDocument() *VideoDoc {
	return &VideoDoc{
		ID:           v.ID.String(),
		Desc:         v.Desc,
		AuthorID:     v.Author.UniqueID,
		Tags:         v.TagNames(),
		CreateTime:   time.Unix(v.CreateTime, 0),
		DiggCount:    v.Stats.DiggCount,
		ShareCount:   v.Stats.ShareCount,
		CommentCount: v.Stats.CommentCount,
		PlayCount:    v.Stats.PlayCount,
	}
}

func (d *VideoDoc) GetID() string { return d.ID }

func (d *VideoDoc) GetIndex() string { return videoIndex }

func (d *VideoDoc) GetTypeMapping() *types.TypeMapping {
	dims := 768
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"id":            types.NewKeywordProperty(),
			"desc":          types.NewTextProperty(),
			"author_id":     types.NewKeywordProperty(),
			"tags":          types.NewKeywordProperty(),
			"create_time":   types.NewDateProperty(),
			"digg_count":    types.NewIntegerNumberProperty(),
			"share_count":   types.NewIntegerNumberProperty(),
			"comment_count": types.NewIntegerNumberProperty(),
			"play_count":    types.NewIntegerNumberProperty(),
			"embedding":     &types.DenseVectorProperty{Dims: &dims},
		},
	}
}

func (d *VideoDoc) GetEmbeddingString() string {
	return fmt.Sprintf("%s %s", d.Desc, strings.Join(d.Tags, " "))
}

func (d *VideoDoc) SetEmbedding(embedding []float32) { d.Embedding = embedding }

func (d *VideoDoc) GetEmbedding() []float32 { return d.Embedding }
