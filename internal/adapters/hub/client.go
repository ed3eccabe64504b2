// Package hub is a small client for the model hub REST API. Every call is a
// single attempt bounded by the client timeout; callers decide what a failure
// means for their scan.
package hub

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultAPIBase   = "https://huggingface.co/api"
	DefaultHubURL    = "https://huggingface.co"
	DefaultUserAgent = "hubboard/1.0"
	DefaultTimeout   = 30 * time.Second
)

// Endpoint labels used for request metrics.
const (
	endpointListRepos       = "list_repos"
	endpointListDiscussions = "list_discussions"
	endpointDiscussion      = "discussion"
	endpointDownload        = "download"
	endpointMembers         = "org_members"
	endpointCreateRepo      = "create_repo"
	endpointCommit          = "commit"
)

// Client talks to the hub API.
type Client struct {
	apiBase   string
	hubURL    string
	token     string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

// New creates a client with defaults pointing at huggingface.co.
func New(opts ...Option) *Client {
	c := &Client{
		apiBase:   DefaultAPIBase,
		hubURL:    DefaultHubURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		http:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRepos lists repositories of one kind.
func (c *Client) ListRepos(ctx context.Context, kind model.RepoKind, opts ListOptions) ([]RepoInfo, error) {
	q := url.Values{}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Author != "" {
		q.Set("author", opts.Author)
	}
	var repos []RepoInfo
	if err := c.getJSON(ctx, endpointListRepos, c.apiURL(kind.Plural(), q), &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListDiscussions lists discussions and pull requests of a repository.
func (c *Client) ListDiscussions(ctx context.Context, kind model.RepoKind, repoID string, f DiscussionFilter) ([]Discussion, error) {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Author != "" {
		q.Set("author", f.Author)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	var page struct {
		Discussions []Discussion `json:"discussions"`
	}
	if err := c.getJSON(ctx, endpointListDiscussions, c.apiURL(kind.Plural()+"/"+repoID+"/discussions", q), &page); err != nil {
		return nil, err
	}
	return page.Discussions, nil
}

// GetDiscussion fetches the event log of one discussion.
func (c *Client) GetDiscussion(ctx context.Context, kind model.RepoKind, repoID string, num int) (DiscussionDetail, error) {
	var d DiscussionDetail
	path := fmt.Sprintf("%s/%s/discussions/%d", kind.Plural(), repoID, num)
	if err := c.getJSON(ctx, endpointDiscussion, c.apiURL(path, nil), &d); err != nil {
		return DiscussionDetail{}, err
	}
	return d, nil
}

// ListOrgMembers returns member handles of an organization in listing order.
func (c *Client) ListOrgMembers(ctx context.Context, org string) ([]string, error) {
	var members []Member
	if err := c.getJSON(ctx, endpointMembers, c.apiURL("organizations/"+org+"/members", nil), &members); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		if login := m.Login(); login != "" {
			out = append(out, login)
		}
	}
	return out, nil
}

// DownloadFile returns the raw content of path at revision.
// Revisions such as refs/pr/7 are escaped into a single path segment.
func (c *Client) DownloadFile(ctx context.Context, kind model.RepoKind, repoID, revision, path string) ([]byte, error) {
	if revision == "" {
		revision = "main"
	}
	u := fmt.Sprintf("%s/%s%s/resolve/%s/%s", c.hubURL, kind.ResolvePrefix(), repoID, url.PathEscape(revision), path)
	return c.do(ctx, endpointDownload, http.MethodGet, u, "", nil)
}

// CreateRepo creates a repository under "namespace/name". An existing
// repository is not an error.
func (c *Client) CreateRepo(ctx context.Context, kind model.RepoKind, repoID string) error {
	ns, name, ok := model.SplitRepoID(repoID)
	if !ok {
		return fmt.Errorf("hub: invalid repo id %q", repoID)
	}
	body, err := sonic.Marshal(map[string]string{
		"type":         string(kind),
		"name":         name,
		"organization": ns,
	})
	if err != nil {
		return fmt.Errorf("hub: encode create request: %w", err)
	}
	_, err = c.do(ctx, endpointCreateRepo, http.MethodPost, c.apiURL("repos/create", nil), "application/json", body)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusConflict {
		return nil
	}
	return err
}

type commitLine struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type commitFileValue struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Commit writes files to the main branch of a repository in one commit.
func (c *Client) Commit(ctx context.Context, kind model.RepoKind, repoID, summary string, files ...CommitFile) error {
	var buf bytes.Buffer
	lines := make([]commitLine, 0, len(files)+1)
	lines = append(lines, commitLine{Key: "header", Value: map[string]string{"summary": summary}})
	for _, f := range files {
		lines = append(lines, commitLine{Key: "file", Value: commitFileValue{
			Path:     f.Path,
			Content:  base64.StdEncoding.EncodeToString(f.Content),
			Encoding: "base64",
		}})
	}
	for _, l := range lines {
		b, err := sonic.Marshal(l)
		if err != nil {
			return fmt.Errorf("hub: encode commit: %w", err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	u := c.apiURL(kind.Plural()+"/"+repoID+"/commit/main", nil)
	_, err := c.do(ctx, endpointCommit, http.MethodPost, u, "application/x-ndjson", buf.Bytes())
	return err
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := c.apiBase + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, endpoint, u string, out any) error {
	body, err := c.do(ctx, endpoint, http.MethodGet, u, "", nil)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, u, err)
	}
	return nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, endpoint, method, u, contentType string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("hub: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		metrics.RecordHubRequest(endpoint, metrics.OutcomeFailed, latency)
		return nil, fmt.Errorf("hub: %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordHubRequest(endpoint, metrics.OutcomeFailed, latency)
		return nil, fmt.Errorf("hub: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordHubRequest(endpoint, metrics.OutcomeFailed, latency)
		return nil, &StatusError{Status: resp.StatusCode, URL: u}
	}
	metrics.RecordHubRequest(endpoint, metrics.OutcomeOK, latency)
	return data, nil
}
