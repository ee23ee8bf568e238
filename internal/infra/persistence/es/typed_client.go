package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/sirupsen/logrus"
)

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	log    *logrus.Logger
	// schemaDoc is only consulted for the index name and mapping,
	// never stored.
	schemaDoc D
}

func InitTypedEsClient[D model.Document](cfg *config.Config, log *logrus.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Addresses: []string{
			cfg.Elasticsearch.Address,
		},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			// Development setups run ES with a self-signed cert.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize elasticsearch client: %w", err)
	}
	return &typedEsClient[D]{client: typedClient, log: log}, nil
}

func (tec *typedEsClient[D]) GetClient() *elasticsearch.TypedClient {
	return tec.client
}

func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	mapping := tec.schemaDoc.GetTypeMapping()
	exists, err := tec.client.Indices.Exists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}
	if exists {
		tec.log.Infof("index %s already exists, skipping create", index)
		return nil
	}

	if mapping == nil {
		_, err = tec.client.Indices.Create(index).Do(ctx)
	} else {
		_, err = tec.client.Indices.Create(index).Mappings(mapping).Do(ctx)
	}
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}

func (tec *typedEsClient[D]) DeleteIndex(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	if _, err := tec.client.Indices.Delete(index).Do(ctx); err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	return nil
}

func (tec *typedEsClient[D]) IndexDocWithID(ctx context.Context, doc D) error {
	_, err := tec.client.Index(tec.schemaDoc.GetIndex()).
		Id(doc.GetID()).
		Document(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("index doc %s: %w", doc.GetID(), err)
	}
	return nil
}

func (tec *typedEsClient[D]) BulkIndexDocsWithID(ctx context.Context, docs []D) error {
	if len(docs) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.schemaDoc.GetIndex(),
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.log.Errorf("bulk indexer: %v", err)
		},
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			tec.log.Errorf("marshal document %s: %v", doc.GetID(), err)
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.GetID(),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					tec.log.Errorf("index document %s: %v", item.DocumentID, err)
				} else {
					tec.log.Errorf("index document %s: %s", item.DocumentID, res.Error.Reason)
				}
			},
		})
		if err != nil {
			tec.log.Errorf("enqueue document %s: %v", doc.GetID(), err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	tec.log.Infof("bulk indexing completed: indexed=%d failed=%d", stats.NumIndexed, stats.NumFailed)
	if stats.NumFailed > 0 {
		return fmt.Errorf("bulk indexing left %d documents unindexed", stats.NumFailed)
	}
	return nil
}

func (tec *typedEsClient[D]) GetDoc(ctx context.Context, id string) (D, error) {
	var doc D
	resp, err := tec.client.Get(tec.schemaDoc.GetIndex(), id).Do(ctx)
	if err != nil {
		return doc, fmt.Errorf("get doc %s: %w", id, err)
	}
	if !resp.Found {
		return doc, fmt.Errorf("doc %s not found", id)
	}
	if err := json.Unmarshal(resp.Source_, &doc); err != nil {
		return doc, fmt.Errorf("unmarshal doc %s: %w", id, err)
	}
	return doc, nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.schemaDoc.GetIndex()).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("count docs: %w", err)
	}
	return resp.Count, nil
}

func (tec *typedEsClient[D]) SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error) {
	resp, err := tec.client.Search().
		Index(tec.schemaDoc.GetIndex()).
		Query(query).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("search docs: %w", err)
	}

	results := make([]D, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc D
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			tec.log.Warnf("skip unparseable hit: %v", err)
			continue
		}
		results = append(results, doc)
	}
	return results, resp.Hits.Total.Value, nil
}

func (tec *typedEsClient[D]) DeleteDoc(ctx context.Context, id string) error {
	if _, err := tec.client.Delete(tec.schemaDoc.GetIndex(), id).Do(ctx); err != nil {
		return fmt.Errorf("delete doc %s: %w", id, err)
	}
	return nil
}
