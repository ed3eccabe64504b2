package repository_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/hubboard/internal/adapters/hub"
	"github.com/okian/hubboard/internal/adapters/repository"
	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJSONL(t *testing.T) {
	Convey("Given a ranked evaluation list", t, func() {
		at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
		rows := []model.EvaluationRecord{
			{ModelID: "a/x", BenchmarkKey: "mmlu", BenchmarkLabel: "MMLU", Score: 71.5, Unit: "%", SourceType: model.SourceDescriptor, Revision: "main", CollectedAt: at},
			{ModelID: "b/y", BenchmarkKey: "arc_mc", BenchmarkLabel: "ARC MC", Score: 55, SourceType: model.SourcePendingChange, Revision: "refs/pr/2", CollectedAt: at},
		}

		Convey("When it is encoded and decoded line by line", func() {
			data, err := repository.EncodeJSONL(rows)
			So(err, ShouldBeNil)
			back, err := repository.DecodeJSONL[model.EvaluationRecord](data)

			Convey("Then the same records come back in the same order", func() {
				So(err, ShouldBeNil)
				So(back, ShouldResemble, rows)
			})
		})

		Convey("When the input is empty", func() {
			data, err := repository.EncodeJSONL([]model.UserRow{})
			So(err, ShouldBeNil)
			So(data, ShouldBeEmpty)
		})
	})

	Convey("Given JSONL with a blank line and a broken line", t, func() {
		_, err := repository.DecodeJSONL[model.UserRow]([]byte("{\"username\":\"a\"}\n\n{broken\n"))
		So(errors.Is(err, repository.ErrDecode), ShouldBeTrue)

		rows, err := repository.DecodeJSONL[model.UserRow]([]byte("{\"username\":\"a\",\"total_points\":3}\n\n"))
		So(err, ShouldBeNil)
		So(len(rows), ShouldEqual, 1)
		So(rows[0].TotalPoints, ShouldEqual, 3)
	})
}

func TestWriteLocal(t *testing.T) {
	Convey("Given an existing output file", t, func() {
		path := filepath.Join(t.TempDir(), "leaderboard.json")
		So(os.WriteFile(path, []byte("old content that is longer than the new one ......................................................"), 0o644), ShouldBeNil)

		Convey("When the leaderboard is written", func() {
			out := model.PointsOutput{Organization: "org", TotalParticipants: 1, Leaderboard: []model.UserRow{{Username: "a", TotalPoints: 2}}}
			So(repository.WriteLocal(path, out), ShouldBeNil)

			Convey("Then the file is replaced wholesale", func() {
				b, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(b), ShouldStartWith, "{")
				So(string(b), ShouldContainSubstring, `"organization": "org"`)
				So(string(b), ShouldNotContainSubstring, "old content")
			})
		})
	})

	Convey("Given a path in a missing directory", t, func() {
		err := repository.WriteLocal(filepath.Join(t.TempDir(), "nope", "x.json"), map[string]int{"a": 1})
		So(err, ShouldNotBeNil)
	})
}

type fakeUploader struct {
	created   []string
	commits   []string
	paths     []string
	failOn    int
	createErr error
}

func (f *fakeUploader) CreateRepo(_ context.Context, kind model.RepoKind, repoID string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, string(kind)+":"+repoID)
	return nil
}

func (f *fakeUploader) Commit(_ context.Context, _ model.RepoKind, _ string, summary string, files ...hub.CommitFile) error {
	if f.failOn > 0 && len(f.commits)+1 == f.failOn {
		return errors.New("boom")
	}
	f.commits = append(f.commits, summary)
	for _, file := range files {
		f.paths = append(f.paths, file.Path)
	}
	return nil
}

func TestPublisher(t *testing.T) {
	_ = logger.InitWithWriter(io.Discard)
	clock := repository.WithClock(func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) })

	Convey("Given an artifact", t, func() {
		a, err := repository.NewArtifact([]model.UserRow{{Username: "a"}}, model.PointsSummary{Organization: "org"})
		So(err, ShouldBeNil)
		So(string(a.Rows), ShouldContainSubstring, `"username":"a"`)
		So(string(a.Metadata), ShouldContainSubstring, `"organization": "org"`)

		Convey("When every step succeeds", func() {
			up := &fakeUploader{}
			err := repository.NewPublisher(up, clock).Publish(context.Background(), "org/board", a)

			Convey("Then the dataset is created and both files are committed", func() {
				So(err, ShouldBeNil)
				So(up.created, ShouldResemble, []string{"dataset:org/board"})
				So(up.paths, ShouldResemble, []string{repository.DataPath, repository.MetadataPath})
				So(up.commits, ShouldResemble, []string{
					"Update leaderboard - 2026-02-03 04:05 UTC",
					"Update metadata - 2026-02-03 04:05 UTC",
				})
			})
		})

		Convey("When the second upload fails", func() {
			up := &fakeUploader{failOn: 2}
			err := repository.NewPublisher(up, clock).Publish(context.Background(), "org/board", a)

			Convey("Then a publish error is returned after the first upload", func() {
				So(errors.Is(err, repository.ErrPublish), ShouldBeTrue)
				So(up.paths, ShouldResemble, []string{repository.DataPath})
			})
		})

		Convey("When the dataset cannot be created", func() {
			up := &fakeUploader{createErr: errors.New("denied")}
			err := repository.NewPublisher(up, clock).Publish(context.Background(), "org/board", a)

			So(errors.Is(err, repository.ErrPublish), ShouldBeTrue)
			So(up.commits, ShouldBeEmpty)
		})
	})
}
