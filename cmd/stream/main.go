// Command stream scrapes one or more user feeds cooperatively: each
// feed runs as a stream whose items are resolved and indexed as they
// arrive, all fetches interleaved on the same chromedp browser.
package main

import (
	"context"
	_ "embed"
	"flag"
	"strings"

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

//go:embed appconfig/appconfig.json
var appConfig []byte

func main() {
	users := flag.String("users", "", "comma-separated unique ids whose feeds to index")
	flag.Parse()

	log := logrus.New()

	appcfg, err := config.ParseConfig(appConfig)
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}
	names := strings.Split(*users, ",")
	if *users == "" || len(names) == 0 {
		log.Fatal("missing -users list")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := browser.InitChromedpSession(ctx, appcfg, log)
	if err != nil {
		log.Fatalf("start chromedp session: %v", err)
	}
	defer session.Close()

	client := scrape.InitClient(session, signer.InitSessionSigner(session), paginate.ModeStream, appcfg, log)

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

	streams := make([]*paginate.Stream[*model.LightVideo], 0, len(names))
	for _, name := range names {
		user, err := client.User(ctx, strings.TrimSpace(name))
		if err != nil {
			log.Fatalf("scrape user %s: %v", name, err)
		}
		log.Infof("feeding stream for @%s", user.UniqueID)
		st, err := client.UserFeed(user.SecUID).Stream(ctx)
		if err != nil {
			log.Fatalf("start feed stream for %s: %v", name, err)
		}
		streams = append(streams, st)
	}

	if err := indexer.ConsumeStreams(ctx, streams...); err != nil {
		log.Fatalf("consume feed streams: %v", err)
	}
	log.Info("all feed streams drained")
}
