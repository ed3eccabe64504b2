package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
	"github.com/okian/hubboard/pkg/metrics"
)

// Paths of the published artifacts inside the dataset repository.
const (
	DataPath     = "data/leaderboard.jsonl"
	MetadataPath = "data/metadata.json"
)

// Uploader is the part of the hub client the publisher needs.
type Uploader interface {
	CreateRepo(ctx context.Context, kind model.RepoKind, repoID string) error
	Commit(ctx context.Context, kind model.RepoKind, repoID, summary string, files ...hub.CommitFile) error
}

// Artifact is an encoded leaderboard ready to publish.
type Artifact struct {
	Rows     []byte
	Metadata []byte
}

// NewArtifact encodes rows as JSONL and summary as indented JSON.
func NewArtifact[T any](rows []T, summary any) (Artifact, error) {
	data, err := EncodeJSONL(rows)
	if err != nil {
		return Artifact{}, err
	}
	meta, err := sonic.MarshalIndent(summary, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encode metadata: %w", err)
	}
	return Artifact{Rows: data, Metadata: meta}, nil
}

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the time source used in commit messages.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// Publisher upserts a leaderboard into a dataset repository.
type Publisher struct {
	up     Uploader
	logger logger.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher backed by up.
func NewPublisher(up Uploader, opts ...Option) *Publisher {
	p := &Publisher{
		up:  up,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get()
	}
	return p
}

// Publish ensures the dataset exists, then uploads rows and metadata as two
// commits. The first failing step stops the rest.
func (p *Publisher) Publish(ctx context.Context, repoID string, a Artifact) error {
	stamp := p.now().UTC().Format("2006-01-02 15:04")

	if err := p.up.CreateRepo(ctx, model.KindDataset, repoID); err != nil {
		metrics.RecordPublish("repo", metrics.OutcomeFailed)
		return fmt.Errorf("%w: create %s: %w", ErrPublish, repoID, err)
	}
	metrics.RecordPublish("repo", metrics.OutcomeOK)

	steps := []struct {
		artifact string
		file     hub.CommitFile
		summary  string
	}{
		{"data", hub.CommitFile{Path: DataPath, Content: a.Rows}, "Update leaderboard - " + stamp + " UTC"},
		{"metadata", hub.CommitFile{Path: MetadataPath, Content: a.Metadata}, "Update metadata - " + stamp + " UTC"},
	}
	for _, s := range steps {
		if err := p.up.Commit(ctx, model.KindDataset, repoID, s.summary, s.file); err != nil {
			metrics.RecordPublish(s.artifact, metrics.OutcomeFailed)
			return fmt.Errorf("%w: upload %s to %s: %w", ErrPublish, s.file.Path, repoID, err)
		}
		metrics.RecordPublish(s.artifact, metrics.OutcomeOK)
		p.logger.Info(ctx, "uploaded artifact",
			logger.String("repo", repoID),
			logger.String("path", s.file.Path),
			logger.Int("bytes", len(s.file.Content)),
		)
	}
	return nil
}
