// Command monitor runs the brand sentiment pipeline: fetch recent mentions,
// classify them, aggregate a report, persist it, and deliver it to Slack.
// It runs once by default; -schedule keeps it resident under a cron spec.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"brandpulse/internal/cache"
	"brandpulse/internal/catalog"
	"brandpulse/internal/classify"
	"brandpulse/internal/config"
	"brandpulse/internal/export"
	"brandpulse/internal/feed"
	"brandpulse/internal/logger"
	"brandpulse/internal/notify"
	"brandpulse/internal/report"
	"brandpulse/internal/storage"
)

// trendHistoryRuns is how many past snapshots feed the trend baseline.
const trendHistoryRuns = 7

type flags struct {
	configPath string
	hours      float64
	dryRun     bool
	verbose    bool
	noCache    bool
	output     string
	xlsxPath   string
	schedule   string
}

func main() {
	var fl flags
	flag.StringVar(&fl.configPath, "config", "config/config.yaml", "path to YAML config file")
	flag.Float64Var(&fl.hours, "hours", 0, "override lookback window in hours")
	flag.BoolVar(&fl.dryRun, "dry-run", false, "print the report instead of sending to Slack")
	flag.BoolVar(&fl.verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&fl.noCache, "no-cache", false, "bypass the classification cache")
	flag.StringVar(&fl.output, "output", "", "also write the report JSON to this path")
	flag.StringVar(&fl.xlsxPath, "xlsx", "", "also export the report as an XLSX workbook")
	flag.StringVar(&fl.schedule, "schedule", "", "cron spec to run repeatedly (e.g. \"0 9 * * *\")")
	flag.Parse()

	if fl.verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}
	log := logger.New()

	// The default config path is optional; an explicitly given one is not.
	configPath := fl.configPath
	if configPath == "config/config.yaml" {
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	m, err := newMonitor(cfg, fl, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize monitor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if fl.schedule != "" {
		runScheduled(ctx, m, fl.schedule, log)
		return
	}
	if err := m.runOnce(ctx); err != nil {
		log.WithError(err).Error("monitoring run failed")
		os.Exit(1)
	}
}

func runScheduled(ctx context.Context, m *monitor, spec string, log *logger.Logger) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := m.runOnce(ctx); err != nil {
			log.WithError(err).Error("scheduled run failed")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("invalid cron schedule")
	}
	log.WithField("schedule", spec).Info("monitor scheduled, waiting for first run")
	c.Start()
	<-ctx.Done()
	log.Info("shutting down scheduler")
	<-c.Stop().Done()
}

type monitor struct {
	cfg        config.Config
	fl         flags
	log        *logger.Logger
	feed       *feed.Client
	classifier *classify.Classifier
	cache      *cache.Cache
	aggregator *report.Aggregator
	store      *storage.Store
	notifier   *notify.Notifier
}

func newMonitor(cfg config.Config, fl flags, log *logger.Logger) (*monitor, error) {
	feedClient, err := feed.NewClient(feed.Options{
		BearerToken: cfg.BearerToken,
		BrandHandle: cfg.Brand.Handle,
		BrandName:   cfg.Brand.Name,
		Keywords:    cfg.Feed.Keywords,
	}, log.WithComponent("feed"))
	if err != nil {
		return nil, fmt.Errorf("feed client: %w", err)
	}

	var cl *cache.Cache
	if !fl.noCache {
		cl = cache.Open(cfg.Classify.CacheFile, log.WithComponent("cache"))
	}

	classifier, err := classify.New(classify.Options{
		APIKey:       cfg.AnthropicAPIKey,
		Model:        cfg.Classify.Model,
		BatchSize:    cfg.Classify.BatchSize,
		CostLimitUSD: cfg.Classify.CostLimitUSD,
		Cache:        cl,
	}, log.WithComponent("classify"))
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	store, err := storage.New(cfg.Storage.DataDir, log.WithComponent("storage"))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	cat := catalog.New()
	aggregator := report.NewAggregator(cat, log.WithComponent("report"), report.Options{
		BrandName:        cfg.Brand.Name,
		TopThemes:        cfg.Report.TopThemes,
		ExamplesPerTheme: cfg.Report.ExamplesPerTheme,
		DetailCeiling:    cfg.Report.DetailCeiling,
	})

	notifier := notify.New(notify.Options{
		WebhookURL:    cfg.SlackWebhookURL,
		BotToken:      cfg.SlackBotToken,
		ChannelID:     cfg.SlackChannelID,
		MentionUserID: cfg.SlackMentionID,
		BrandName:     cfg.Brand.Name,
	}, aggregator.Renderer(), log.WithComponent("notify"))

	return &monitor{
		cfg:        cfg,
		fl:         fl,
		log:        log,
		feed:       feedClient,
		classifier: classifier,
		cache:      cl,
		aggregator: aggregator,
		store:      store,
		notifier:   notifier,
	}, nil
}

// runOnce executes one full monitoring cycle.
func (m *monitor) runOnce(ctx context.Context) error {
	started := time.Now()
	window := m.cfg.Window()
	if m.fl.hours > 0 {
		window = time.Duration(m.fl.hours * float64(time.Hour))
	}
	log := m.log.WithComponent("monitor")
	log.WithField("window_hours", window.Hours()).Info("starting monitoring run")

	if err := m.feed.ValidateCredentials(ctx); err != nil {
		return m.fail(ctx, fmt.Errorf("credential validation: %w", err))
	}

	posts, err := m.feed.SearchMentions(ctx, window)
	if err != nil {
		return m.fail(ctx, fmt.Errorf("fetch mentions: %w", err))
	}
	if len(posts) == 0 {
		log.Info("no posts found in window")
		if !m.fl.dryRun {
			if err := m.notifier.SendEmptyReport(ctx, window); err != nil {
				log.WithError(err).Warn("failed to send empty-report notice")
			}
		}
		return nil
	}

	if _, err := m.store.SaveArtifact("raw_posts", started, posts); err != nil {
		log.WithError(err).Warn("failed to save raw posts artifact")
	}

	records, stats, err := m.classifier.ClassifyAll(ctx, posts)
	if err != nil {
		return m.fail(ctx, fmt.Errorf("classify: %w", err))
	}
	if _, err := m.store.SaveArtifact("classified_posts", started, records); err != nil {
		log.WithError(err).Warn("failed to save classified posts artifact")
	}
	if m.cache != nil {
		if err := m.cache.Save(); err != nil {
			log.WithError(err).Warn("failed to persist classification cache")
		}
	}

	historical, err := m.store.RecentScores(trendHistoryRuns)
	if err != nil {
		log.WithError(err).Warn("failed to load historical scores, trend will read STABLE")
		historical = nil
	}
	m.aggregator.SetHistoricalScores(historical)

	end := time.Now().UTC()
	rep := m.aggregator.Aggregate(records, report.RunInfo{
		DateRange: fmt.Sprintf("%s to %s",
			end.Add(-window).Format("2006-01-02"), end.Format("2006-01-02")),
		Duration:     time.Since(started),
		CacheHits:    stats.CacheHits,
		TotalAPICost: stats.TotalCostUSD,
	})

	if _, err := m.store.Save(rep); err != nil {
		log.WithError(err).Warn("failed to save report snapshot")
	}
	if m.fl.output != "" {
		if err := writeJSON(rep, m.fl.output); err != nil {
			log.WithError(err).Warn("failed to write report JSON")
		}
	}
	if m.fl.xlsxPath != "" {
		if err := export.WriteXLSX(rep, m.fl.xlsxPath, m.log.WithComponent("export")); err != nil {
			log.WithError(err).Warn("failed to export XLSX")
		}
	}

	if m.fl.dryRun {
		fmt.Println(rep.SummaryText)
		fmt.Println()
		fmt.Println(rep.DetailText)
	} else if err := m.notifier.SendReport(ctx, rep); err != nil {
		return m.fail(ctx, fmt.Errorf("deliver report: %w", err))
	}

	if _, err := m.store.CleanupOld(m.cfg.Retention()); err != nil {
		log.WithError(err).Warn("snapshot cleanup failed")
	}

	m.log.WithRun(rep.Metadata.RunID).
		WithField("duration", time.Since(started).Round(time.Second).String()).
		Info("monitoring run complete")
	return nil
}

// fail notifies the channel about a run failure before returning it.
func (m *monitor) fail(ctx context.Context, runErr error) error {
	if !m.fl.dryRun {
		if err := m.notifier.SendError(ctx, runErr); err != nil {
			m.log.WithError(err).Warn("failed to send error notification")
		}
	}
	return runErr
}

func writeJSON(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
