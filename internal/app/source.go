// Package app runs the two collection pipelines: benchmark scores from
// trending models and engagement points for an organization.
package app

import (
	"context"
	"fmt"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/domain/frontmatter"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
)

// descriptorPath is the file holding a repository's metadata block.
const descriptorPath = "README.md"

// HubAPI is the read side of the hub client used by the collectors.
type HubAPI interface {
	ListRepos(ctx context.Context, kind model.RepoKind, opts hub.ListOptions) ([]hub.RepoInfo, error)
	ListDiscussions(ctx context.Context, kind model.RepoKind, repoID string, f hub.DiscussionFilter) ([]hub.Discussion, error)
	GetDiscussion(ctx context.Context, kind model.RepoKind, repoID string, num int) (hub.DiscussionDetail, error)
	DownloadFile(ctx context.Context, kind model.RepoKind, repoID, revision, path string) ([]byte, error)
	ListOrgMembers(ctx context.Context, org string) ([]string, error)
}

// Trending lists up to fetchLimit trending repositories of kind, keeps those
// tagged with tag (all of them when tag is empty) and truncates to limit.
// A listing failure is returned to the caller.
func Trending(ctx context.Context, api HubAPI, kind model.RepoKind, tag string, limit, fetchLimit int) ([]hub.RepoInfo, error) {
	if fetchLimit < limit {
		fetchLimit = limit
	}
	repos, err := api.ListRepos(ctx, kind, hub.ListOptions{Sort: hub.SortTrending, Limit: fetchLimit})
	if err != nil {
		return nil, fmt.Errorf("list trending %s: %w", kind.Plural(), err)
	}
	out := make([]hub.RepoInfo, 0, len(repos))
	for _, r := range repos {
		if tag == "" || r.HasTag(tag) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// OwnedBy lists repositories of kind authored by owner.
func OwnedBy(ctx context.Context, api HubAPI, kind model.RepoKind, owner string, limit int) ([]hub.RepoInfo, error) {
	repos, err := api.ListRepos(ctx, kind, hub.ListOptions{Author: owner, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list %s of %s: %w", kind.Plural(), owner, err)
	}
	return repos, nil
}

// readDescriptor downloads and parses the metadata block of a repository at
// revision. Any failure is logged and yields an empty map.
func readDescriptor(ctx context.Context, api HubAPI, log logger.Logger, kind model.RepoKind, repoID, revision string) map[string]any {
	body, err := api.DownloadFile(ctx, kind, repoID, revision, descriptorPath)
	if err != nil {
		log.Warn(ctx, "descriptor download failed",
			logger.String("repo", repoID),
			logger.String("revision", revision),
			logger.Error(err),
		)
		return map[string]any{}
	}
	return frontmatter.Parse(string(body))
}
