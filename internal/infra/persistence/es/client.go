// Package es wraps the Elasticsearch typed client behind a generic
// document-store interface.
package es

import (
	"context"

	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// TypedEsClient stores one document type in its own index. The index
// name and mapping come from the document itself.
type TypedEsClient[D model.Document] interface {
	GetClient() *elasticsearch.TypedClient
	CreateIndexWithMapping(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	IndexDocWithID(ctx context.Context, doc D) error
	BulkIndexDocsWithID(ctx context.Context, docs []D) error
	GetDoc(ctx context.Context, id string) (D, error)
	CountDocs(ctx context.Context) (int64, error)
	SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error)
	DeleteDoc(ctx context.Context, id string) error
}
