package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/mailscope/pkg/classify"
	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/content"
	"github.com/umputun/mailscope/pkg/db"
	"github.com/umputun/mailscope/pkg/digest"
	"github.com/umputun/mailscope/pkg/enrich"
	"github.com/umputun/mailscope/pkg/llm"
	"github.com/umputun/mailscope/pkg/pipeline"
	"github.com/umputun/mailscope/pkg/repository"
	"github.com/umputun/mailscope/pkg/scheduler"
	"github.com/umputun/mailscope/pkg/source"
	"github.com/umputun/mailscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"mailscope.yml" description:"configuration file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides server.listen"`

	// modes, exactly one is required
	FetchNew         bool   `long:"fetch-new" description:"fetch new items from sources and enrich them"`
	EnrichUnenriched bool   `long:"enrich-unenriched" description:"enrich stored rows with empty summary"`
	Reenrich         bool   `long:"reenrich" description:"force enrichment of the newest rows, requires --last"`
	EnrichID         string `long:"enrich-id" description:"force enrichment of a single row"`
	Serve            bool   `long:"serve" description:"run JSON API with periodic backlog enrichment"`

	IncludeSplit bool `long:"include-split" description:"backlog mode also processes rows already split into stories"`
	Limit        int  `long:"limit" default:"0" description:"maximum rows in backlog mode, 0 means no limit"`
	Last         int  `long:"last" default:"0" description:"number of newest rows for --reenrich"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

const feedTimeout = 30 * time.Second

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	SetupLog(opts.Debug)
	lgr.Printf("[INFO] starting mailscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	lgr.Print("[INFO] completed")
}

func run(ctx context.Context, opts Opts) error {
	if err := checkMode(opts); err != nil {
		return err
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	SetupLog(opts.Debug, cfg.LLM.APIKey)
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DB: db.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		},
		RetryAttempts: cfg.Store.RetryAttempts,
		RetryDelay:    cfg.Store.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database, %v", err)
		}
	}()

	var sources []pipeline.Source
	if opts.FetchNew || opts.Serve {
		if sources, err = makeSources(ctx, cfg); err != nil {
			return err
		}
	}
	runner := makeRunner(cfg, repos.Document, sources)

	var stats pipeline.RunStats
	switch {
	case opts.FetchNew:
		stats, err = runner.Ingest(ctx)
	case opts.EnrichUnenriched:
		stats, err = runner.EnrichBacklog(ctx, opts.IncludeSplit, opts.Limit)
	case opts.Reenrich:
		stats, err = runner.Reenrich(ctx, opts.Last)
	case opts.EnrichID != "":
		stats, err = runner.EnrichID(ctx, opts.EnrichID)
	case opts.Serve:
		return serve(ctx, cfg, repos.Document, runner, len(sources) > 0, opts.Debug)
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	lgr.Printf("[INFO] done: %+v", stats)
	return nil
}

// checkMode verifies exactly one mode is selected and its arguments are valid
func checkMode(opts Opts) error {
	modes := 0
	for _, on := range []bool{opts.FetchNew, opts.EnrichUnenriched, opts.Reenrich, opts.EnrichID != "", opts.Serve} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return errors.New("exactly one of --fetch-new, --enrich-unenriched, --reenrich, --enrich-id, --serve is required")
	}
	if opts.Reenrich && opts.Last <= 0 {
		return errors.New("--reenrich requires --last N with N > 0")
	}
	if opts.Limit < 0 {
		return errors.New("--limit must be non-negative")
	}
	return nil
}

// makeSources creates enabled sources, a source that can't be created is a setup failure
func makeSources(ctx context.Context, cfg *config.Config) ([]pipeline.Source, error) {
	var res []pipeline.Source
	if cfg.Sources.Gmail.Enabled {
		gm, err := source.NewGmail(ctx, cfg.Sources.Gmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail source: %w", err)
		}
		res = append(res, gm)
	}
	if len(cfg.Sources.Feeds) > 0 {
		res = append(res, source.NewFeeds(cfg.Sources.Feeds, feedTimeout))
	}
	if len(res) == 0 {
		lgr.Printf("[WARN] no sources enabled")
	}
	return res, nil
}

// makeRunner wires the classifier, router, dispatcher and splitter into a pipeline runner
func makeRunner(cfg *config.Config, store pipeline.Store, sources []pipeline.Source) *pipeline.Runner {
	client := llm.NewClient(cfg.LLM)
	extractor := content.NewExtractor()
	dispatcher := enrich.NewDispatcher(enrich.DispatcherConfig{
		Completer: client,
		Extractor: extractor,
		Images: content.NewImageFetcher(content.ImageOptions{
			Timeout: cfg.Images.Timeout,
			MaxSide: cfg.Images.MaxSize,
			MinSide: cfg.Images.MinSide,
		}),
		Tagger:           enrich.NewTagger(cfg.Enrichment.Tagger),
		MinContentLength: cfg.Enrichment.MinContentLength,
		MaxInputChars:    cfg.Enrichment.MaxInputChars,
		MaxImages:        cfg.Images.MaxImages,
		ErrorScore:       cfg.Enrichment.ErrorScore,
		DefaultHandler:   cfg.Enrichment.DefaultHandler,
	})

	params := pipeline.Params{
		Store:   store,
		Sources: sources,
		Classifier: classify.New(classify.Options{
			DetectionRules: cfg.DetectionRules,
			Senders:        cfg.Senders,
			Blocked:        cfg.Blocked,
			DefaultTag:     cfg.Enrichment.DefaultTag,
			Extractor:      extractor,
		}),
		Router:     enrich.NewRouter(cfg.Enrichment.Routes, cfg.Enrichment.DefaultHandler),
		Dispatcher: dispatcher,
		Splitter: digest.New(digest.Options{
			Threshold:     cfg.Digest.Threshold,
			MinLinkText:   cfg.Digest.MinLinkText,
			MinLinkTextPT: cfg.Digest.MinLinkTextPT,
			SkipPatterns:  cfg.Digest.SkipPatterns,
		}),
		PortugueseTags:    cfg.Digest.PortugueseTags,
		FallbackSearchURL: cfg.Enrichment.FallbackSearchURL,
	}
	if cfg.Enrichment.Keywords.Enabled {
		params.Keywords = enrich.NewKeywordExtractor(client, cfg.Enrichment.Keywords)
	}
	return pipeline.NewRunner(params)
}

// serve runs the JSON API and the periodic scheduler until the context is canceled
func serve(ctx context.Context, cfg *config.Config, store *repository.DocumentRepository, runner *pipeline.Runner,
	fetchNew, debug bool) error {
	sched := scheduler.NewScheduler(scheduler.Params{
		Runner:     runner,
		Interval:   cfg.Schedule.Interval,
		BatchLimit: cfg.Schedule.BatchLimit,
		FetchNew:   fetchNew,
	})
	srv := server.New(cfg, store, sched, revision, debug)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	sched.Start(gctx)
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}

// SetupLog configures lgr and the standard logger, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	var logOpts []lgr.Option
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	var nonEmpty []string
	for _, s := range secs {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, lgr.Secret(nonEmpty...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
