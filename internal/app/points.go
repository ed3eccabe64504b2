package app

import (
	"context"
	"strings"
	"time"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/domain/ledger"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
	"github.com/okian/hubboard/pkg/metrics"
)

const pipelinePoints = "points"

// PointsOption applies a configuration option to the PointsCollector.
type PointsOption func(*PointsCollector)

// WithPointsLogger sets the logger.
func WithPointsLogger(l logger.Logger) PointsOption {
	return func(c *PointsCollector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOrganization sets the tracked organization.
func WithOrganization(org string) PointsOption {
	return func(c *PointsCollector) {
		if org != "" {
			c.org = org
		}
	}
}

// WithDiscussionLimit sets the per-repository discussion page size.
func WithDiscussionLimit(n int) PointsOption {
	return func(c *PointsCollector) {
		if n > 0 {
			c.discussionLimit = n
		}
	}
}

// WithOrgRepoLimit sets the per-kind limit of the organization listing.
func WithOrgRepoLimit(n int) PointsOption {
	return func(c *PointsCollector) {
		if n > 0 {
			c.orgRepoLimit = n
		}
	}
}

// WithExternalTrendingLimit sets the trending sample size per kind.
func WithExternalTrendingLimit(n int) PointsOption {
	return func(c *PointsCollector) {
		if n > 0 {
			c.externalLimit = n
		}
	}
}

// WithLedger sets the ledger points are accumulated in.
func WithLedger(l *ledger.Ledger) PointsOption {
	return func(c *PointsCollector) {
		if l != nil {
			c.ledger = l
		}
	}
}

// PointsCollector credits engagement on the organization's repositories and,
// optionally, members' activity on trending repositories elsewhere.
type PointsCollector struct {
	api    HubAPI
	ledger *ledger.Ledger
	logger logger.Logger

	org             string
	discussionLimit int
	orgRepoLimit    int
	externalLimit   int
}

// NewPointsCollector creates a collector with the stock limits.
func NewPointsCollector(api HubAPI, opts ...PointsOption) *PointsCollector {
	c := &PointsCollector{
		api:             api,
		ledger:          ledger.New(),
		org:             "hf-skills",
		discussionLimit: 100,
		orgRepoLimit:    1000,
		externalLimit:   50,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// CollectAll seeds org members and scans every repository the organization
// owns. A failure to list the organization's repositories is returned.
func (c *PointsCollector) CollectAll(ctx context.Context) error {
	c.logger.Info(ctx, "scanning organization", logger.String("org", c.org))

	members, err := c.api.ListOrgMembers(ctx, c.org)
	if err != nil {
		c.logger.Warn(ctx, "org member listing failed", logger.String("org", c.org), logger.Error(err))
		members = nil
	} else {
		c.logger.Info(ctx, "found organization members", logger.Int("count", len(members)))
	}
	c.ledger.Seed(members...)

	type owned struct {
		info hub.RepoInfo
		kind model.RepoKind
	}
	var repos []owned
	for _, kind := range model.AllKinds {
		list, err := OwnedBy(ctx, c.api, kind, c.org, c.orgRepoLimit)
		if err != nil {
			return err
		}
		c.logger.Info(ctx, "listed organization repositories", logger.String("kind", kind.Plural()), logger.Int("count", len(list)))
		for _, r := range list {
			repos = append(repos, owned{info: r, kind: kind})
		}
	}

	for _, r := range repos {
		repoID := firstNonEmpty(r.info.ID, r.info.ModelID)
		if repoID == "" {
			continue
		}
		owner := firstNonEmpty(r.info.Author, model.RepoOwner(repoID))
		if owner != "" && owner != c.org {
			c.credit(ctx, owner, model.ReposOwned, repoID, model.ActivityRepoCreated, 0)
		}
		c.scanDiscussions(ctx, r.kind, repoID)
		metrics.RecordItemScanned(pipelinePoints, metrics.OutcomeOK)
	}
	c.updateParticipants()
	return nil
}

// scanDiscussions credits every non-org author of a discussion and of its
// comments.
func (c *PointsCollector) scanDiscussions(ctx context.Context, kind model.RepoKind, repoID string) {
	ds, err := c.api.ListDiscussions(ctx, kind, repoID, hub.DiscussionFilter{Limit: c.discussionLimit})
	if err != nil {
		c.logger.Warn(ctx, "discussion listing failed", logger.String("repo", repoID), logger.Error(err))
		return
	}
	if len(ds) == 0 {
		return
	}
	c.logger.Debug(ctx, "found discussions", logger.String("repo", repoID), logger.Int("count", len(ds)))

	for _, d := range ds {
		author := firstNonEmpty(d.Author.Name, d.Author.Fullname)
		if author != "" && author != c.org {
			if d.IsPullRequest {
				c.credit(ctx, author, model.PRsOpened, repoID, model.ActivityPROpened, d.Num)
			} else {
				c.credit(ctx, author, model.DiscussionsOpened, repoID, model.ActivityDiscussionOpened, d.Num)
			}
		}
		if d.Num == 0 {
			continue
		}
		c.scanComments(ctx, kind, repoID, d.Num, func(name string) bool {
			return name != "" && name != c.org
		}, model.ActivityComment)
	}
}

// scanComments credits comment events whose author passes keep.
func (c *PointsCollector) scanComments(ctx context.Context, kind model.RepoKind, repoID string, num int, keep func(string) bool, activity model.ActivityType) {
	detail, err := c.api.GetDiscussion(ctx, kind, repoID, num)
	if err != nil {
		c.logger.Debug(ctx, "discussion detail failed",
			logger.String("repo", repoID),
			logger.Int("discussion", num),
			logger.Error(err),
		)
		return
	}
	for _, ev := range detail.Events {
		if ev.Type != hub.EventComment {
			continue
		}
		author := firstNonEmpty(ev.Author.Name, ev.Author.Fullname)
		if keep(author) {
			c.credit(ctx, author, model.CommentsMade, repoID, activity, num)
		}
	}
}

// ScanExternal samples trending repositories of the given kinds and credits
// org members for pull requests, discussions and comments they authored there.
// It issues one listing per (member, repository, discussion type).
func (c *PointsCollector) ScanExternal(ctx context.Context, kinds ...model.RepoKind) {
	members := c.ledger.Members()
	if len(members) == 0 {
		c.logger.Warn(ctx, "no org members loaded; skipping external scan")
		return
	}
	if len(kinds) == 0 {
		kinds = model.AllKinds
	}
	c.logger.Info(ctx, "scanning trending repositories for member activity",
		logger.Int("members", len(members)),
		logger.Int("kinds", len(kinds)),
	)

	prefix := c.org + "/"
	for _, kind := range kinds {
		trending, err := Trending(ctx, c.api, kind, "", c.externalLimit, c.externalLimit)
		if err != nil {
			c.logger.Warn(ctx, "trending listing failed", logger.String("kind", kind.Plural()), logger.Error(err))
			continue
		}
		c.logger.Info(ctx, "scanning trending repositories", logger.String("kind", kind.Plural()), logger.Int("count", len(trending)))

		for _, r := range trending {
			repoID := firstNonEmpty(r.ID, r.ModelID)
			if repoID == "" || strings.HasPrefix(repoID, prefix) {
				continue
			}
			if _, _, ok := model.SplitRepoID(repoID); !ok {
				continue
			}
			for _, member := range members {
				c.scanMember(ctx, kind, repoID, member, hub.TypePullRequest)
				c.scanMember(ctx, kind, repoID, member, hub.TypeDiscussion)
			}
			metrics.RecordItemScanned(pipelinePoints, metrics.OutcomeOK)
		}
	}
	c.updateParticipants()
}

func (c *PointsCollector) scanMember(ctx context.Context, kind model.RepoKind, repoID, member, discussionType string) {
	ds, err := c.api.ListDiscussions(ctx, kind, repoID, hub.DiscussionFilter{
		Author: member,
		Type:   discussionType,
		Status: hub.StatusAll,
	})
	if err != nil {
		c.logger.Debug(ctx, "member discussion listing failed",
			logger.String("repo", repoID),
			logger.String("member", member),
			logger.Error(err),
		)
		return
	}
	for _, d := range ds {
		if d.IsPullRequest {
			c.credit(ctx, member, model.PRsOpened, repoID, model.ActivityExternalPR, d.Num)
			c.logger.Info(ctx, "found external pull request", logger.String("member", member), logger.String("repo", repoID))
		} else {
			c.credit(ctx, member, model.DiscussionsOpened, repoID, model.ActivityExternalDiscussion, d.Num)
			c.logger.Info(ctx, "found external discussion", logger.String("member", member), logger.String("repo", repoID))
		}
		if d.NumComments > 0 {
			c.scanComments(ctx, kind, repoID, d.Num, func(name string) bool {
				return name == member
			}, model.ActivityExternalComment)
		}
	}
}

func (c *PointsCollector) credit(ctx context.Context, user string, counter model.Counter, repoID string, activity model.ActivityType, num int) {
	if err := c.ledger.Increment(user, counter, repoID, activity, num); err != nil {
		c.logger.Error(ctx, "credit failed", logger.String("user", user), logger.String("counter", counter.String()), logger.Error(err))
	}
}

func (c *PointsCollector) updateParticipants() {
	members, external := c.ledger.Counts()
	metrics.UpdateParticipants(members, external)
}

// Leaderboard returns one row per participant, highest total first.
func (c *PointsCollector) Leaderboard() []model.UserRow {
	return c.ledger.Ranked()
}

// Summary describes the current ledger.
func (c *PointsCollector) Summary(generatedAt time.Time, runID string) model.PointsSummary {
	members, external := c.ledger.Counts()
	return model.PointsSummary{
		GeneratedAt:          generatedAt,
		RunID:                runID,
		Organization:         c.org,
		TotalParticipants:    c.ledger.Len(),
		TotalPoints:          c.ledger.TotalPoints(),
		OrgMembers:           members,
		ExternalContributors: external,
	}
}

// Output builds the local leaderboard file.
func (c *PointsCollector) Output(generatedAt time.Time) model.PointsOutput {
	return model.PointsOutput{
		GeneratedAt:       generatedAt,
		Organization:      c.org,
		TotalParticipants: c.ledger.Len(),
		Leaderboard:       c.Leaderboard(),
	}
}
