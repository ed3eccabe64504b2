package hub

// RepoInfo is one entry of a repository listing.
type RepoInfo struct {
	ID          string   `json:"id"`
	ModelID     string   `json:"modelId"`
	Author      string   `json:"author"`
	PipelineTag string   `json:"pipeline_tag"`
	Tags        []string `json:"tags"`
}

// RepoID prefers modelId and falls back to id.
func (r RepoInfo) RepoID() string {
	if r.ModelID != "" {
		return r.ModelID
	}
	return r.ID
}

// HasTag reports whether the pipeline tag or any tag equals tag.
func (r RepoInfo) HasTag(tag string) bool {
	if r.PipelineTag == tag {
		return true
	}
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Author identifies a discussion or event author.
type Author struct {
	Name     string `json:"name"`
	Fullname string `json:"fullname"`
}

// Discussion is a discussion or pull request summary.
type Discussion struct {
	Num           int    `json:"num"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	IsPullRequest bool   `json:"isPullRequest"`
	CreatedAt     string `json:"createdAt"`
	NumComments   int    `json:"numComments"`
	Author        Author `json:"author"`
}

// Event is one entry of a discussion's event log.
type Event struct {
	Type   string `json:"type"`
	Author Author `json:"author"`
}

// EventComment is the event type for a posted comment.
const EventComment = "comment"

// DiscussionDetail carries the event log of one discussion.
type DiscussionDetail struct {
	Num    int     `json:"num"`
	Events []Event `json:"events"`
}

// Member is an organization member as listed by the API.
type Member struct {
	User     string `json:"user"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Fullname string `json:"fullname"`
}

// Login returns the first non-empty handle field.
func (m Member) Login() string {
	switch {
	case m.User != "":
		return m.User
	case m.Username != "":
		return m.Username
	}
	return m.Name
}

// ListOptions narrows a repository listing.
type ListOptions struct {
	Sort   string
	Limit  int
	Author string
}

// DiscussionFilter narrows a discussion listing. Zero values are omitted.
type DiscussionFilter struct {
	Limit  int
	Author string
	Type   string
	Status string
}

// Discussion type and status filter values.
const (
	TypePullRequest = "pull_request"
	TypeDiscussion  = "discussion"
	StatusAll       = "all"
	StatusOpen      = "open"
	SortTrending    = "trendingScore"
)

// CommitFile is one file written by a commit.
type CommitFile struct {
	Path    string
	Content []byte
}
