// noornote-render streams recent notes from the configured relays
// through the content pipeline and prints the enriched markup, with
// profile resolutions and blink frames logged as they land. Mostly a
// demonstration of wiring the subsystem end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/htsula/noornote/content"
	"github.com/htsula/noornote/internal/cache"
	"github.com/htsula/noornote/internal/config"
	"github.com/htsula/noornote/internal/services"
	"github.com/htsula/noornote/profile"
)

// logPatcher is a stand-in for a DOM patcher: it reports every patch
// the recognition controller would apply to mounted mentions.
type logPatcher struct {
	log *slog.Logger
}

func (p logPatcher) SetName(bindingID, pubkey, name string) {
	p.log.Info("patch name", "binding", bindingID, "pubkey", pubkey[:8], "name", name)
}

func (p logPatcher) SetAvatar(bindingID, pubkey, pictureURL string) {
	p.log.Info("patch avatar", "binding", bindingID, "pubkey", pubkey[:8], "picture", pictureURL)
}

func main() {
	var (
		cfgPath string
		limit   int
		wait    time.Duration
	)
	flag.StringVar(&cfgPath, "config", "", "config file path")
	flag.IntVar(&limit, "limit", 10, "number of notes to render")
	flag.DurationVar(&wait, "wait", 5*time.Second, "how long to wait for profile resolutions")
	flag.Parse()

	config.InitLogger()
	log := slog.Default()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	backend, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Error("cache backend init failed", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := nostr.NewSimplePool(ctx)
	ttl := cache.DefaultConfig()
	ttl.ProfileTTL = cfg.ProfileTTL()
	svc := services.NewRelayProfiles(pool, cfg.Relays, backend, ttl, log)

	profiles := profile.NewCache(svc)
	store := profile.NewMemoryStore(cfg.RecencyWindow())
	patcher := logPatcher{log: log}
	rec := profile.NewRecognizer(store, patcher,
		profile.WithAnimator(profile.NewTimerAnimator(patcher, profile.BlinkConfig{
			Cycles:   cfg.BlinkCycles,
			Interval: cfg.BlinkInterval(),
		})))
	defer rec.Close()
	profiles.OnResolved(rec.ProfileResolved)

	pipeline := content.NewPipeline(profiles)

	subCtx, subCancel := context.WithTimeout(ctx, 15*time.Second)
	defer subCancel()
	events := pool.SubscribeMany(subCtx, cfg.Relays, nostr.Filter{
		Kinds: []int{1},
		Limit: limit,
	})

	seen := 0
	for re := range events {
		out := pipeline.Process(re.Content, re.Tags)
		fmt.Printf("--- %s\n%s\n", re.ID, out.HTML)
		if len(out.Media) > 0 {
			log.Info("extracted media", "event", re.ID[:8], "count", len(out.Media))
		}
		seen++
		if seen >= limit {
			break
		}
	}

	// Let late profile resolutions surface as patch logs.
	time.Sleep(wait)
}
