package ledger_test

import (
	"testing"
	"time"

	"github.com/okian/hubboard/internal/domain/ledger"
	"github.com/okian/hubboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := ledger.WithClock(func() time.Time { return at })

	Convey("Given a ledger seeded with org members", t, func() {
		l := ledger.New(clock)
		l.Seed("alice", "bob", "")

		Convey("Then members start at zero points", func() {
			So(l.Len(), ShouldEqual, 2)
			u, ok := l.Get("alice")
			So(ok, ShouldBeTrue)
			So(u.IsOrgMember, ShouldBeTrue)
			So(u.TotalPoints(), ShouldEqual, 0)
			So(l.Members(), ShouldResemble, []string{"alice", "bob"})
		})

		Convey("When a member opens three PRs and makes two comments", func() {
			for i := 1; i <= 3; i++ {
				So(l.Increment("alice", model.PRsOpened, "org/repo", model.ActivityPROpened, i), ShouldBeNil)
			}
			for i := 0; i < 2; i++ {
				So(l.Increment("alice", model.CommentsMade, "org/repo", model.ActivityComment, 1), ShouldBeNil)
			}

			Convey("Then the member has five points and five activities", func() {
				u, _ := l.Get("alice")
				So(u.TotalPoints(), ShouldEqual, 5)
				So(u.PRsOpened, ShouldEqual, 3)
				So(u.CommentsMade, ShouldEqual, 2)
				So(len(u.Activities), ShouldEqual, 5)
				So(u.Activities[0].Type, ShouldEqual, model.ActivityPROpened)
				So(u.Activities[0].Timestamp, ShouldEqual, at)
				So(l.TotalPoints(), ShouldEqual, 5)
			})
		})

		Convey("When an unknown user opens a discussion", func() {
			So(l.Increment("carol", model.DiscussionsOpened, "org/repo", model.ActivityDiscussionOpened, 4), ShouldBeNil)

			Convey("Then they are added as an external contributor", func() {
				u, ok := l.Get("carol")
				So(ok, ShouldBeTrue)
				So(u.IsOrgMember, ShouldBeFalse)
				So(u.TotalPoints(), ShouldEqual, 1)

				members, external := l.Counts()
				So(members, ShouldEqual, 2)
				So(external, ShouldEqual, 1)
			})
		})

		Convey("When seeding a user that already has points", func() {
			_ = l.Increment("dave", model.ReposOwned, "org/x", model.ActivityRepoCreated, 0)
			l.Seed("dave")

			Convey("Then the points survive and the flag flips", func() {
				u, _ := l.Get("dave")
				So(u.IsOrgMember, ShouldBeTrue)
				So(u.ReposOwned, ShouldEqual, 1)
			})
		})

		Convey("When the author is anonymous", func() {
			So(l.Increment("", model.CommentsMade, "org/repo", model.ActivityComment, 1), ShouldBeNil)
			So(l.Len(), ShouldEqual, 2)
		})

		Convey("When an unknown counter is used", func() {
			err := l.Increment("alice", model.Counter(9), "org/repo", model.ActivityComment, 0)

			Convey("Then an error is returned and nothing is logged", func() {
				So(err, ShouldNotBeNil)
				u, _ := l.Get("alice")
				So(u.Activities, ShouldBeEmpty)
			})
		})
	})

	Convey("Given users with equal totals", t, func() {
		l := ledger.New(clock)
		l.Seed("m1")
		_ = l.Increment("x", model.CommentsMade, "r/1", model.ActivityComment, 1)
		_ = l.Increment("y", model.CommentsMade, "r/1", model.ActivityComment, 1)
		_ = l.Increment("y", model.CommentsMade, "r/1", model.ActivityComment, 1)
		_ = l.Increment("m1", model.PRsOpened, "r/1", model.ActivityPROpened, 2)

		Convey("Then ranking breaks ties by first-seen order", func() {
			rows := l.Ranked()
			So(len(rows), ShouldEqual, 3)
			So(rows[0].Username, ShouldEqual, "y")
			So(rows[1].Username, ShouldEqual, "m1")
			So(rows[2].Username, ShouldEqual, "x")
		})
	})
}
