package model

import (
	"fmt"
	"time"
)

// Counter selects one of the four engagement counters.
type Counter int

// Engagement counters. Each one is worth one point.
const (
	DiscussionsOpened Counter = iota
	CommentsMade
	PRsOpened
	ReposOwned
)

// String returns the counter's field name in the published rows.
func (c Counter) String() string {
	switch c {
	case DiscussionsOpened:
		return "discussions_opened"
	case CommentsMade:
		return "comments_made"
	case PRsOpened:
		return "prs_opened"
	case ReposOwned:
		return "repos_owned"
	}
	return fmt.Sprintf("counter(%d)", int(c))
}

// ActivityType labels an entry in a user's activity log.
type ActivityType string

// Activity types. The external_* variants come from the targeted trending scan.
const (
	ActivityRepoCreated        ActivityType = "repo_created"
	ActivityPROpened           ActivityType = "pr_opened"
	ActivityDiscussionOpened   ActivityType = "discussion_opened"
	ActivityComment            ActivityType = "comment"
	ActivityExternalPR         ActivityType = "external_pr"
	ActivityExternalDiscussion ActivityType = "external_discussion"
	ActivityExternalComment    ActivityType = "external_comment"
)

// Activity is one attributed engagement event.
type Activity struct {
	Type          ActivityType `json:"type"`
	RepoID        string       `json:"repo_id"`
	DiscussionNum int          `json:"discussion_num,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// UserStats accumulates engagement for one username during a run.
type UserStats struct {
	Username          string
	IsOrgMember       bool
	DiscussionsOpened int
	CommentsMade      int
	PRsOpened         int
	ReposOwned        int
	Activities        []Activity
}

// Bump increments exactly the field c selects.
func (u *UserStats) Bump(c Counter) error {
	switch c {
	case DiscussionsOpened:
		u.DiscussionsOpened++
	case CommentsMade:
		u.CommentsMade++
	case PRsOpened:
		u.PRsOpened++
	case ReposOwned:
		u.ReposOwned++
	default:
		return fmt.Errorf("unknown counter %d", int(c))
	}
	return nil
}

// TotalPoints is the sum of the four counters.
func (u *UserStats) TotalPoints() int {
	return u.DiscussionsOpened + u.CommentsMade + u.PRsOpened + u.ReposOwned
}

// Row flattens the stats into the published shape.
func (u *UserStats) Row() UserRow {
	return UserRow{
		Username:          u.Username,
		IsOrgMember:       u.IsOrgMember,
		TotalPoints:       u.TotalPoints(),
		DiscussionsOpened: u.DiscussionsOpened,
		CommentsMade:      u.CommentsMade,
		PRsOpened:         u.PRsOpened,
		ReposOwned:        u.ReposOwned,
	}
}

// UserRow is one line of the engagement leaderboard.
type UserRow struct {
	Username          string `json:"username"`
	IsOrgMember       bool   `json:"is_org_member"`
	TotalPoints       int    `json:"total_points"`
	DiscussionsOpened int    `json:"discussions_opened"`
	CommentsMade      int    `json:"comments_made"`
	PRsOpened         int    `json:"prs_opened"`
	ReposOwned        int    `json:"repos_owned"`
}

// PointsSummary is the metadata object published next to the engagement rows.
type PointsSummary struct {
	GeneratedAt          time.Time `json:"generated_at"`
	RunID                string    `json:"run_id"`
	Organization         string    `json:"organization"`
	TotalParticipants    int       `json:"total_participants"`
	TotalPoints          int       `json:"total_points"`
	OrgMembers           int       `json:"org_members"`
	ExternalContributors int       `json:"external_contributors"`
}

// PointsOutput is the local leaderboard file for the engagement pipeline.
type PointsOutput struct {
	GeneratedAt       time.Time `json:"generated_at"`
	Organization      string    `json:"organization"`
	TotalParticipants int       `json:"total_participants"`
	Leaderboard       []UserRow `json:"leaderboard"`
}
