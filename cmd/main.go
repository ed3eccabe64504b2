package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/adapters/repository"
	"github.com/okian/hubboard/internal/app"
	"github.com/okian/hubboard/internal/config"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/internal/report"
	"github.com/okian/hubboard/pkg/logger"
	"github.com/okian/hubboard/pkg/metrics"
)

// Subcommand and flag names.
const (
	cmdEvals  = "evals"
	cmdPoints = "points"

	flagPush         = "push-to-hub"
	flagOutput       = "output"
	flagRepoID       = "repo-id"
	flagScanExternal = "scan-external"
	flagRepoType     = "repo-type"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	common := func() []cli.Flag {
		return []cli.Flag{
			&cli.BoolFlag{Name: flagPush, Usage: "publish the leaderboard to its hub dataset"},
			&cli.StringFlag{Name: flagOutput, Usage: "local JSON output path (default from config)"},
			&cli.StringFlag{Name: flagRepoID, Usage: "hub dataset id to publish to (default from config)"},
		}
	}

	return &cli.Command{
		Name:  "hubboard",
		Usage: "Collect model hub leaderboards",
		Commands: []*cli.Command{
			{
				Name:  cmdEvals,
				Usage: "Collect benchmark scores declared by trending models",
				Flags: common(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return runEvals(ctx, c, out)
				},
			},
			{
				Name:  cmdPoints,
				Usage: "Collect engagement points for the organization",
				Flags: append(common(),
					&cli.BoolFlag{Name: flagScanExternal, Usage: "also scan trending repositories for member activity"},
					&cli.StringSliceFlag{Name: flagRepoType, Usage: "repository kinds for the external scan: models, datasets, spaces"},
				),
				Action: func(ctx context.Context, c *cli.Command) error {
					return runPoints(ctx, c, out)
				},
			},
		},
	}
}

// runEnv holds what both pipelines need for one run.
type runEnv struct {
	cfg    *config.Config
	log    logger.Logger
	runID  string
	client *hub.Client
	start  time.Time
}

func setup(ctx context.Context, pipeline string) (*runEnv, error) {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	runID := uuid.NewString()
	log := logger.Named(pipeline).With(logger.String("run_id", runID))
	if cfg.Token == "" {
		log.Warn(ctx, "no hub token configured; requests may be rate-limited")
	}

	client := hub.New(
		hub.WithAPIBase(cfg.APIBase),
		hub.WithHubURL(cfg.HubURL),
		hub.WithToken(cfg.Token),
		hub.WithUserAgent(cfg.UserAgent),
		hub.WithTimeout(cfg.RequestTimeout()),
	)
	return &runEnv{cfg: cfg, log: log, runID: runID, client: client, start: time.Now()}, nil
}

func runEvals(ctx context.Context, c *cli.Command, out io.Writer) error {
	env, err := setup(ctx, cmdEvals)
	if err != nil {
		return err
	}
	catalog, err := env.cfg.Catalog()
	if err != nil {
		return err
	}

	collector := app.NewEvalsCollector(env.client,
		app.WithEvalsLogger(env.log),
		app.WithCatalog(catalog),
		app.WithPipelineFilter(env.cfg.PipelineFilter),
		app.WithTrendingLimits(env.cfg.TrendingLimit, env.cfg.TrendingFetchLimit),
		app.WithPRScanLimit(env.cfg.PRScanLimit),
		app.WithEvalsHubURL(env.cfg.HubURL),
	)
	if _, err := collector.Collect(ctx); err != nil {
		return err
	}

	generatedAt := time.Now().UTC()
	board := collector.Leaderboard()
	if err := report.Evaluations(out, board); err != nil {
		env.log.Warn(ctx, "failed to print summary", logger.Error(err))
	}

	output := stringOr(c.String(flagOutput), env.cfg.OutputPath)
	if err := repository.WriteLocal(output, collector.Output(generatedAt)); err != nil {
		return err
	}
	env.log.Info(ctx, "saved leaderboard", logger.String("path", output))

	if c.Bool(flagPush) {
		publish(ctx, env, stringOr(c.String(flagRepoID), env.cfg.EvalsDataset), board, collector.Summary(generatedAt, env.runID))
	}
	finish(ctx, env, cmdEvals)
	return nil
}

func runPoints(ctx context.Context, c *cli.Command, out io.Writer) error {
	env, err := setup(ctx, cmdPoints)
	if err != nil {
		return err
	}

	var kinds []model.RepoKind
	for _, raw := range c.StringSlice(flagRepoType) {
		kind, err := model.ParseRepoKind(raw)
		if err != nil {
			return fmt.Errorf("--%s: %w", flagRepoType, err)
		}
		kinds = append(kinds, kind)
	}

	collector := app.NewPointsCollector(env.client,
		app.WithPointsLogger(env.log),
		app.WithOrganization(env.cfg.Organization),
		app.WithDiscussionLimit(env.cfg.DiscussionLimit),
		app.WithOrgRepoLimit(env.cfg.OrgRepoLimit),
		app.WithExternalTrendingLimit(env.cfg.ExternalTrendingLimit),
	)
	if err := collector.CollectAll(ctx); err != nil {
		return err
	}
	if c.Bool(flagScanExternal) {
		collector.ScanExternal(ctx, kinds...)
	}

	generatedAt := time.Now().UTC()
	board := collector.Leaderboard()
	if err := report.Points(out, board); err != nil {
		env.log.Warn(ctx, "failed to print summary", logger.Error(err))
	}

	output := stringOr(c.String(flagOutput), env.cfg.OutputPath)
	if err := repository.WriteLocal(output, collector.Output(generatedAt)); err != nil {
		return err
	}
	env.log.Info(ctx, "saved leaderboard", logger.String("path", output))

	if c.Bool(flagPush) {
		publish(ctx, env, stringOr(c.String(flagRepoID), env.cfg.PointsDataset), board, collector.Summary(generatedAt, env.runID))
	}
	finish(ctx, env, cmdPoints)
	return nil
}

// publish uploads the leaderboard. Failures are logged and never fail the run.
func publish[T any](ctx context.Context, env *runEnv, repoID string, rows []T, summary any) {
	artifact, err := repository.NewArtifact(rows, summary)
	if err != nil {
		env.log.Error(ctx, "failed to encode leaderboard", logger.Error(err))
		return
	}
	p := repository.NewPublisher(env.client, repository.WithLogger(env.log))
	if err := p.Publish(ctx, repoID, artifact); err != nil {
		env.log.Error(ctx, "failed to push to hub", logger.String("repo", repoID), logger.Error(err))
		return
	}
	env.log.Info(ctx, "pushed leaderboard", logger.String("repo", repoID))
}

// finish records run metrics and pushes them when a gateway is configured.
func finish(ctx context.Context, env *runEnv, pipeline string) {
	elapsed := time.Since(env.start)
	metrics.RecordRunCompleted(pipeline, elapsed)
	env.log.Info(ctx, "run completed", logger.Duration("elapsed", elapsed))

	if env.cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, env.cfg.PushgatewayURL, "hubboard_"+pipeline); err != nil {
		env.log.Warn(ctx, "failed to push metrics", logger.Error(err))
	}
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
