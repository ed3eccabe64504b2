// Package ledger accumulates per-user engagement counters for one run.
package ledger

import (
	"time"

	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/internal/domain/ranking"
	"github.com/okian/hubboard/pkg/metrics"
)

// Ledger maps usernames to their stats. Users are remembered in the order
// they were first seen, which is also the tie-break order when ranking.
// It is not safe for concurrent use.
type Ledger struct {
	users map[string]*model.UserStats
	order []string
	now   func() time.Time
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		users: make(map[string]*model.UserStats),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ensure(username string) *model.UserStats {
	if u, ok := l.users[username]; ok {
		return u
	}
	u := &model.UserStats{Username: username}
	l.users[username] = u
	l.order = append(l.order, username)
	return u
}

// Seed registers org members with zero counters. Empty names are ignored.
func (l *Ledger) Seed(members ...string) {
	for _, name := range members {
		if name == "" {
			continue
		}
		l.ensure(name).IsOrgMember = true
	}
}

// Increment credits username with one point on counter c and appends an
// activity. Unknown users are created as non-members. A zero discussion
// number means the activity is not tied to a discussion. An empty username
// is ignored.
func (l *Ledger) Increment(username string, c model.Counter, repoID string, kind model.ActivityType, discussionNum int) error {
	if username == "" {
		return nil
	}
	u := l.ensure(username)
	if err := u.Bump(c); err != nil {
		return err
	}
	u.Activities = append(u.Activities, model.Activity{
		Type:          kind,
		RepoID:        repoID,
		DiscussionNum: discussionNum,
		Timestamp:     l.now(),
	})
	metrics.RecordPointAwarded(c.String())
	return nil
}

// Get returns the stats for username.
func (l *Ledger) Get(username string) (*model.UserStats, bool) {
	u, ok := l.users[username]
	return u, ok
}

// Members returns org member usernames in seed order.
func (l *Ledger) Members() []string {
	var out []string
	for _, name := range l.order {
		if l.users[name].IsOrgMember {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of known users.
func (l *Ledger) Len() int { return len(l.order) }

// Counts returns how many known users are org members and how many are not.
func (l *Ledger) Counts() (members, external int) {
	for _, u := range l.users {
		if u.IsOrgMember {
			members++
		} else {
			external++
		}
	}
	return members, external
}

// TotalPoints sums points over every user.
func (l *Ledger) TotalPoints() int {
	total := 0
	for _, u := range l.users {
		total += u.TotalPoints()
	}
	return total
}

// Ranked returns one row per user, highest total first. Equal totals keep
// first-seen order.
func (l *Ledger) Ranked() []model.UserRow {
	rows := make([]model.UserRow, 0, len(l.order))
	for _, name := range l.order {
		rows = append(rows, l.users[name].Row())
	}
	return ranking.Users(rows)
}
