package main

import (
	"context"
	_ "embed"
	"flag"

	"github.com/LouYuanbo1/tiktokagent/internal/config"
	"github.com/LouYuanbo1/tiktokagent/internal/domain/model"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/browser"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/embedding"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/persistence/es"
	"github.com/LouYuanbo1/tiktokagent/internal/infra/signer"
	"github.com/LouYuanbo1/tiktokagent/internal/paginate"
	"github.com/LouYuanbo1/tiktokagent/internal/service/scrape"
	"github.com/sirupsen/logrus"
)

// The embedded appconfig.json carries the browser, Elasticsearch and
// embedder settings. Adjust the file, not this source.
//
//go:embed appconfig/appconfig.json
var appConfig []byte

func main() {
	videoLink := flag.String("video", "", "video page link to scrape")
	commentLimit := flag.Int("comments", 100, "how many comments to pull through the API")
	flag.Parse()

	log := logrus.New()

	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}
	if *videoLink == "" {
		log.Fatal("missing -video link")
	}

	ctx := context.Background()

	session, err := browser.InitRodSession(appcfg, log)
	if err != nil {
		log.Fatalf("start rod session: %v", err)
	}
	defer session.Close()

	client := scrape.InitClient(session, signer.InitSessionSigner(session), paginate.ModeBlocking, appcfg, log)

	esVideoClient, err := es.InitTypedEsClient[*model.VideoDoc](appcfg, log)
	if err != nil {
		log.Fatalf("init elasticsearch client: %v", err)
	}
	embedder, err := embedding.InitEmbedder(ctx, appcfg)
	if err != nil {
		log.Fatalf("init embedder: %v", err)
	}
	indexer := scrape.InitIndexService(esVideoClient, embedder, log)
	if err := indexer.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	video, err := client.Video(ctx, *videoLink)
	if err != nil {
		log.Fatalf("scrape video: %v", err)
	}
	log.Infof("scraped video %d by @%s with %d page comments", video.ID.Int64(), video.Author.UniqueID, len(video.Comments))

	// Pull further comments through the comment API, page by page.
	it := client.Comments(video.ID.Int64()).Iter()
	fetched := 0
	for it.Next(ctx) {
		c := it.Item()
		log.Infof("comment %d by %s: %s", c.ID.Int64(), c.User.UniqueID, c.Text)
		fetched++
		if fetched >= *commentLimit {
			break
		}
	}
	if err := it.Err(); err != nil {
		log.Errorf("comment iteration stopped: %v", err)
	}

	if err := indexer.IndexVideos(ctx, []*model.Video{video}); err != nil {
		log.Fatalf("index video: %v", err)
	}

	count, err := esVideoClient.CountDocs(ctx)
	if err != nil {
		log.Fatalf("count indexed docs: %v", err)
	}
	log.Infof("index now holds %d documents", count)
}
