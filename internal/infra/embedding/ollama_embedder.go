package embedding

import (
	"context"
	"strconv"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/cloudwego/eino-ext/components/embedding/ollama"
)

type embedder struct {
	model     *ollama.Embedder
	batchSize int
}

func InitEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	model, err := ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.Host + ":" + strconv.Itoa(cfg.Embedder.Port),
	})
	if err != nil {
		return nil, err
	}
	return &embedder{model: model, batchSize: cfg.Embedder.BatchSize}, nil
}

func (e *embedder) BatchSize() int {
	return e.batchSize
}

// Embed narrows the model's float64 vectors to the float32 the index
// mapping stores.
func (e *embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.model.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, 0, len(vectors))
	for _, vec := range vectors {
		narrowed := make([]float32, len(vec))
		for i, f := range vec {
			narrowed[i] = float32(f)
		}
		out = append(out, narrowed)
	}
	return out, nil
}
