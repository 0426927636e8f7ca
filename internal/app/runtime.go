package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samvad-hq/rssfeed/internal/announce"
	"github.com/samvad-hq/rssfeed/internal/config"
	"github.com/samvad-hq/rssfeed/internal/feed"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/metrics"
	"github.com/samvad-hq/rssfeed/internal/scraper"
	"github.com/samvad-hq/rssfeed/internal/storage"
	"github.com/samvad-hq/rssfeed/pkg/httpclient"
	"github.com/samvad-hq/rssfeed/pkg/publishers"
	"github.com/samvad-hq/rssfeed/pkg/sitemap"
	"github.com/samvad-hq/rssfeed/pkg/sources"
)

// Runtime holds everything a serve or generate command needs.
type Runtime struct {
	Config    *config.Config
	Sources   *sources.Registry
	Generator *Generator
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer

	fanout *publishers.Fanout
	store  storage.Store
	log    logger.Logger
}

// NewRuntime builds the runtime from config: source registry, HTTP client,
// metrics and the optional announcement pipeline.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	srcReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	if _, ok := srcReg.ByID(cfg.DefaultSource); !ok {
		return nil, fmt.Errorf("default source %q is not registered", cfg.DefaultSource)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count":   len(srcReg.IDs()),
		"ids":     srcReg.IDs(),
		"default": cfg.DefaultSource,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, cfg.UserAgent)
	reader := sitemap.NewReader(client, log)
	assembler := feed.NewAssembler(scraper.NewScraper(client, scraper.NewFramerDateExtractor(), log), m, log)

	rt := &Runtime{
		Config:   cfg,
		Sources:  srcReg,
		Metrics:  m,
		Gatherer: reg,
		log:      log,
	}

	var announcer ItemAnnouncer
	if strings.TrimSpace(cfg.PublishersFile) != "" {
		a, err := rt.initAnnouncer(ctx, cfg, m)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		announcer = a
	} else {
		log.InfoObj("announcements disabled", "publishers_file", cfg.PublishersFile)
	}

	rt.Generator = NewGenerator(reader, assembler, announcer, m, log)
	return rt, nil
}

func (r *Runtime) initAnnouncer(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*announce.Announcer, error) {
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers enabled in %s", cfg.PublishersFile)
	}

	fanout, err := publishers.DefaultBuilders().NewFanoutFrom(ctx, enabled, r.log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	r.fanout = fanout

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	r.log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ItemTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	r.store = store
	r.log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"item_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return announce.New(r.fanout, store, m, r.log), nil
}

// Source resolves id to a registered source; an empty id means the default source.
func (r *Runtime) Source(id string) (sources.Source, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = r.Config.DefaultSource
	}
	return r.Sources.ByID(id)
}

// Close waits for pending announcements and releases publishers and storage.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.Generator.Wait()

	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
