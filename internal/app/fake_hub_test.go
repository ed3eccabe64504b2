package app_test

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

type listCall struct {
	kind   model.RepoKind
	repoID string
	filter hub.DiscussionFilter
}

// fakeHub serves canned responses keyed the way the real API addresses them.
type fakeHub struct {
	repos       map[string][]hub.RepoInfo // "models|author"
	reposErr    map[string]error
	discussions map[string][]hub.Discussion     // repo id
	discErr     map[string]error                // repo id
	details     map[string]hub.DiscussionDetail // "repo#num"
	files       map[string]string               // "repo@revision"
	members     []string
	membersErr  error

	repoCalls   []hub.ListOptions
	listCalls   []listCall
	detailCalls []string
	downloads   []string
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		repos:       map[string][]hub.RepoInfo{},
		reposErr:    map[string]error{},
		discussions: map[string][]hub.Discussion{},
		discErr:     map[string]error{},
		details:     map[string]hub.DiscussionDetail{},
		files:       map[string]string{},
	}
}

func (f *fakeHub) ListRepos(_ context.Context, kind model.RepoKind, opts hub.ListOptions) ([]hub.RepoInfo, error) {
	f.repoCalls = append(f.repoCalls, opts)
	key := kind.Plural() + "|" + opts.Author
	if err := f.reposErr[key]; err != nil {
		return nil, err
	}
	return f.repos[key], nil
}

func (f *fakeHub) ListDiscussions(_ context.Context, kind model.RepoKind, repoID string, flt hub.DiscussionFilter) ([]hub.Discussion, error) {
	f.listCalls = append(f.listCalls, listCall{kind: kind, repoID: repoID, filter: flt})
	if err := f.discErr[repoID]; err != nil {
		return nil, err
	}
	var out []hub.Discussion
	for _, d := range f.discussions[repoID] {
		if flt.Author != "" && d.Author.Name != flt.Author {
			continue
		}
		if flt.Type == hub.TypePullRequest && !d.IsPullRequest {
			continue
		}
		if flt.Type == hub.TypeDiscussion && d.IsPullRequest {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeHub) GetDiscussion(_ context.Context, _ model.RepoKind, repoID string, num int) (hub.DiscussionDetail, error) {
	key := fmt.Sprintf("%s#%d", repoID, num)
	f.detailCalls = append(f.detailCalls, key)
	d, ok := f.details[key]
	if !ok {
		return hub.DiscussionDetail{}, &hub.StatusError{Status: 404, URL: key}
	}
	return d, nil
}

func (f *fakeHub) DownloadFile(_ context.Context, _ model.RepoKind, repoID, revision, _ string) ([]byte, error) {
	key := repoID + "@" + revision
	f.downloads = append(f.downloads, key)
	body, ok := f.files[key]
	if !ok {
		return nil, &hub.StatusError{Status: 404, URL: key}
	}
	return []byte(body), nil
}

func (f *fakeHub) ListOrgMembers(context.Context, string) ([]string, error) {
	return f.members, f.membersErr
}

func card(dataset string, value any) string {
	return fmt.Sprintf(`---
model-index:
  - name: m
    results:
      - task:
          type: text-generation
        dataset:
          name: %s
        metrics:
          - type: acc
            value: %v
---
`, dataset, value)
}

func comment(name string) hub.Event {
	return hub.Event{Type: hub.EventComment, Author: hub.Author{Name: name}}
}
