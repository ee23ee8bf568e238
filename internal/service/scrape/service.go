package scrape

import (
	"context"
	"time"

	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/embedding"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/persistence/es"
	"github.com/LouYuanbo1/tiktokagent/internal/paginate"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IndexService embeds and persists scraped videos into Elasticsearch.
type IndexService interface {
	// EnsureIndex creates the video index with its mapping if missing.
	EnsureIndex(ctx context.Context) error
	// IndexVideos embeds and bulk-indexes full video records.
	IndexVideos(ctx context.Context, videos []*model.Video) error
	// ConsumeStreams drains stream-mode feed pagers concurrently,
	// resolving each listed video to its full record and indexing it.
	ConsumeStreams(ctx context.Context, streams ...*paginate.Stream[*model.LightVideo]) error
}

type indexService struct {
	typedEsClient es.TypedEsClient[*model.VideoDoc]
	embedder      embedding.Embedder
	log           *logrus.Logger
}

func InitIndexService(
	typedEsClient es.TypedEsClient[*model.VideoDoc],
	embedder embedding.Embedder,
	log *logrus.Logger,
) IndexService {
	return &indexService{
		typedEsClient: typedEsClient,
		embedder:      embedder,
		log:           log,
	}
}

func (s *indexService) EnsureIndex(ctx context.Context) error {
	return s.typedEsClient.CreateIndexWithMapping(ctx)
}

func (s *indexService) IndexVideos(ctx context.Context, videos []*model.Video) error {
	if len(videos) == 0 {
		return nil
	}
	docs := make([]*model.VideoDoc, 0, len(videos))
	for _, v := range videos {
		docs = append(docs, v.ToDocument())
	}
	s.embedDocs(docs)
	return s.indexDocs(docs)
}

func (s *indexService) ConsumeStreams(ctx context.Context, streams ...*paginate.Stream[*model.LightVideo]) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, stream := range streams {
		g.Go(func() error {
			var batch []*model.Video
			for light := range stream.Items() {
				video, err := light.Resolve(ctx)
				if err != nil {
					s.log.Warnf("skip video %d: %v", light.ID.Int64(), err)
					continue
				}
				batch = append(batch, video)
				if len(batch) >= s.embedder.BatchSize() {
					if err := s.IndexVideos(ctx, batch); err != nil {
						return err
					}
					batch = batch[:0]
				}
			}
			if err := stream.Err(); err != nil {
				return err
			}
			return s.IndexVideos(ctx, batch)
		})
	}
	return g.Wait()
}

// embedDocs fills the embedding vectors batch by batch. A failed batch
// is logged and its documents indexed without a vector.
func (s *indexService) embedDocs(docs []*model.VideoDoc) {
	batchSize := s.embedder.BatchSize()
	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.GetEmbeddingString())
	}
	for i := 0; i < len(texts); i += batchSize {
		end := min(i+batchSize, len(texts))
		vectors, err := s.embedder.Embed(reqCtx, texts[i:end])
		if err != nil {
			s.log.Errorf("embed batch [%d:%d]: %v", i, end, err)
			continue
		}
		for j := range vectors {
			docs[i+j].SetEmbedding(vectors[j])
		}
	}
}

func (s *indexService) indexDocs(docs []*model.VideoDoc) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	return s.typedEsClient.BulkIndexDocsWithID(reqCtx, docs)
}
