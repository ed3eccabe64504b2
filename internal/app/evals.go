package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/domain/benchmark"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/internal/domain/ranking"
	"github.com/okian/hubboard/internal/domain/scoring"
	"github.com/okian/hubboard/pkg/logger"
	"github.com/okian/hubboard/pkg/metrics"
)

const (
	pipelineEvals     = "evals"
	unknownAuthor     = "unknown-author"
	defaultRevision   = "main"
	pullRevisionFmt   = "refs/pr/%d"
	defaultHubBaseURL = "https://huggingface.co"
)

// EvalsOption applies a configuration option to the EvalsCollector.
type EvalsOption func(*EvalsCollector)

// WithEvalsLogger sets the logger.
func WithEvalsLogger(l logger.Logger) EvalsOption {
	return func(c *EvalsCollector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCatalog replaces the default benchmark catalog.
func WithCatalog(cat *benchmark.Catalog) EvalsOption {
	return func(c *EvalsCollector) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// WithPipelineFilter sets the category tag trending models must carry.
func WithPipelineFilter(tag string) EvalsOption {
	return func(c *EvalsCollector) {
		c.pipelineFilter = tag
	}
}

// WithTrendingLimits sets the candidate ceiling and the over-fetch ceiling.
func WithTrendingLimits(limit, fetchLimit int) EvalsOption {
	return func(c *EvalsCollector) {
		if limit > 0 {
			c.trendingLimit = limit
		}
		if fetchLimit > 0 {
			c.fetchLimit = fetchLimit
		}
	}
}

// WithPRScanLimit bounds how many discussions are listed per model.
func WithPRScanLimit(n int) EvalsOption {
	return func(c *EvalsCollector) {
		if n > 0 {
			c.prScanLimit = n
		}
	}
}

// WithEvalsHubURL sets the root used to build source links.
func WithEvalsHubURL(u string) EvalsOption {
	return func(c *EvalsCollector) {
		if u != "" {
			c.hubURL = u
		}
	}
}

// WithEvalsClock sets the time source for collected_at stamps.
func WithEvalsClock(now func() time.Time) EvalsOption {
	return func(c *EvalsCollector) {
		if now != nil {
			c.now = now
		}
	}
}

// EvalsCollector gathers the best declared benchmark scores of trending models.
// Each Collect call rebuilds its results from scratch.
type EvalsCollector struct {
	api     HubAPI
	catalog *benchmark.Catalog
	logger  logger.Logger
	now     func() time.Time

	pipelineFilter string
	trendingLimit  int
	fetchLimit     int
	prScanLimit    int
	hubURL         string

	records []model.EvaluationRecord
}

// NewEvalsCollector creates a collector with the stock limits.
func NewEvalsCollector(api HubAPI, opts ...EvalsOption) *EvalsCollector {
	c := &EvalsCollector{
		api:            api,
		catalog:        benchmark.Default(),
		now:            func() time.Time { return time.Now().UTC() },
		pipelineFilter: "text-generation",
		trendingLimit:  50,
		fetchLimit:     100,
		prScanLimit:    40,
		hubURL:         defaultHubBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// Collect scans trending models and returns one record per (model, benchmark)
// with a declared score. Only a failure of the trending listing is returned.
func (c *EvalsCollector) Collect(ctx context.Context) ([]model.EvaluationRecord, error) {
	c.records = nil

	candidates, err := Trending(ctx, c.api, model.KindModel, c.pipelineFilter, c.trendingLimit, c.fetchLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		c.logger.Warn(ctx, "no trending models carry the pipeline tag", logger.String("pipeline", c.pipelineFilter))
		metrics.UpdateEvaluationRecords(0)
		return nil, nil
	}
	c.logger.Info(ctx, "found trending models", logger.Int("count", len(candidates)), logger.String("pipeline", c.pipelineFilter))

	for _, repo := range candidates {
		repoID := repo.RepoID()
		if repoID == "" {
			continue
		}
		scores := c.collectScores(ctx, repoID)
		if scores.Len() == 0 {
			metrics.RecordItemScanned(pipelineEvals, metrics.OutcomeSkipped)
			continue
		}
		metrics.RecordItemScanned(pipelineEvals, metrics.OutcomeOK)
		c.records = append(c.records, scores.Records(c.now())...)
	}

	metrics.UpdateEvaluationRecords(len(c.records))
	c.logger.Info(ctx, "collected evaluation entries", logger.Int("count", len(c.records)))
	return c.records, nil
}

// collectScores reads the model's own descriptor first and falls back to its
// open pull requests, newest first, stopping at the first one with a match.
func (c *EvalsCollector) collectScores(ctx context.Context, repoID string) *scoring.Scores {
	meta := readDescriptor(ctx, c.api, c.logger, model.KindModel, repoID, defaultRevision)
	if index, ok := meta["model-index"]; ok && index != nil {
		scores := scoring.Extract(index, c.catalog, scoring.Source{
			RepoID:      repoID,
			Contributor: model.RepoOwner(repoID),
			Kind:        model.SourceDescriptor,
			URL:         c.hubURL + "/" + repoID,
			Revision:    defaultRevision,
		})
		if scores.Len() > 0 {
			c.logger.Debug(ctx, "scores found in model card", logger.String("repo", repoID), logger.Int("benchmarks", scores.Len()))
			return scores
		}
	}

	for _, pr := range c.pullRequests(ctx, repoID) {
		revision := fmt.Sprintf(pullRevisionFmt, pr.Num)
		meta := readDescriptor(ctx, c.api, c.logger, model.KindModel, repoID, revision)
		index, ok := meta["model-index"]
		if !ok || index == nil {
			continue
		}
		contributor := firstNonEmpty(pr.Author.Name, pr.Author.Fullname, unknownAuthor)
		scores := scoring.Extract(index, c.catalog, scoring.Source{
			RepoID:      repoID,
			Contributor: contributor,
			Kind:        model.SourcePendingChange,
			URL:         fmt.Sprintf("%s/%s/discussions/%d", c.hubURL, repoID, pr.Num),
			Revision:    revision,
		})
		if scores.Len() > 0 {
			c.logger.Info(ctx, "scores found in pull request",
				logger.String("repo", repoID),
				logger.Int("pr", pr.Num),
				logger.String("contributor", contributor),
			)
			return scores
		}
	}

	c.logger.Info(ctx, "no target benchmarks located", logger.String("repo", repoID))
	return scoring.NewScores()
}

// pullRequests lists the open pull requests of a model, newest first.
// A listing failure is logged and yields none.
func (c *EvalsCollector) pullRequests(ctx context.Context, repoID string) []hub.Discussion {
	ds, err := c.api.ListDiscussions(ctx, model.KindModel, repoID, hub.DiscussionFilter{Limit: c.prScanLimit})
	if err != nil {
		c.logger.Warn(ctx, "pull request listing failed", logger.String("repo", repoID), logger.Error(err))
		return nil
	}
	prs := make([]hub.Discussion, 0, len(ds))
	for _, d := range ds {
		if d.IsPullRequest && (d.Status == "" || d.Status == hub.StatusOpen) {
			prs = append(prs, d)
		}
	}
	slices.SortStableFunc(prs, func(a, b hub.Discussion) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	if len(prs) > 0 {
		c.logger.Debug(ctx, "scanning pull requests", logger.String("repo", repoID), logger.Int("count", len(prs)))
	}
	return prs
}

// Leaderboard returns the collected records ranked by score.
func (c *EvalsCollector) Leaderboard() []model.EvaluationRecord {
	return ranking.Evaluations(c.records)
}

// Benchmarks returns the catalog keys in match order.
func (c *EvalsCollector) Benchmarks() []string {
	return c.catalog.Keys()
}

// Summary describes the last collection.
func (c *EvalsCollector) Summary(generatedAt time.Time, runID string) model.EvalsSummary {
	models := make(map[string]struct{})
	contributors := make(map[string]struct{})
	for _, r := range c.records {
		models[r.ModelID] = struct{}{}
		contributors[r.Contributor] = struct{}{}
	}
	return model.EvalsSummary{
		GeneratedAt:      generatedAt,
		RunID:            runID,
		TotalEntries:     len(c.records),
		ModelsWithScores: len(models),
		Contributors:     len(contributors),
		Benchmarks:       c.Benchmarks(),
	}
}

// Output builds the local leaderboard file.
func (c *EvalsCollector) Output(generatedAt time.Time) model.EvalsOutput {
	return model.EvalsOutput{
		GeneratedAt:  generatedAt,
		TotalEntries: len(c.records),
		Benchmarks:   c.Benchmarks(),
		Leaderboard:  c.Leaderboard(),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
