package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/hubboard/internal/domain/model"
	"github.com/okian/hubboard/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

// fakeHubServer serves just enough of the hub API for one run of each pipeline.
func fakeHubServer() (*httptest.Server, *[]string) {
	var mu sync.Mutex
	var commits []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("author") == "org" {
			_, _ = io.WriteString(w, `[{"id":"org/tool","author":"org"}]`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":"acme/llm","pipeline_tag":"text-generation"},{"id":"x/img","pipeline_tag":"text-to-image"}]`)
	})
	mux.HandleFunc("/api/datasets", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `[]`) })
	mux.HandleFunc("/api/spaces", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `[]`) })
	mux.HandleFunc("/api/organizations/org/members", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"user":"alice"},{"user":"idle"}]`)
	})
	mux.HandleFunc("/api/models/org/tool/discussions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"discussions":[{"num":1,"isPullRequest":true,"author":{"name":"alice"}}]}`)
	})
	mux.HandleFunc("/api/models/org/tool/discussions/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"events":[{"type":"comment","author":{"name":"zoe"}}]}`)
	})
	mux.HandleFunc("/acme/llm/resolve/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "---\nmodel-index:\n  - name: llm\n    results:\n      - dataset:\n          name: MMLU\n        metrics:\n          - type: acc\n            value: 70.123\n---\n")
	})
	mux.HandleFunc("/api/repos/create", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	mux.HandleFunc("/api/datasets/org/board/commit/main", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		commits = append(commits, string(body))
		mu.Unlock()
	})
	return httptest.NewServer(mux), &commits
}

func setEnv(vars map[string]string) func() {
	for k, v := range vars {
		_ = os.Setenv(k, v)
	}
	return func() {
		for k := range vars {
			_ = os.Unsetenv(k)
		}
	}
}

func TestEvalsCommand(t *testing.T) {
	convey.Convey("Given a hub with one scored trending model", t, func() {
		srv, _ := fakeHubServer()
		defer srv.Close()
		dir := t.TempDir()
		defer setEnv(map[string]string{
			"HUBBOARD_API_BASE": srv.URL + "/api",
			"HUBBOARD_HUB_URL":  srv.URL,
			"HUBBOARD_ENV_FILE": filepath.Join(dir, "none.env"),
			"HUBBOARD_TOKEN":    "t",
		})()

		convey.Convey("When the evals command runs", func() {
			var out bytes.Buffer
			output := filepath.Join(dir, "evals.json")
			err := newApp(&out).Run(context.Background(), []string{"hubboard", "evals", "--output", output})

			convey.Convey("Then the summary is printed and the file is written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "acme/llm")
				convey.So(out.String(), convey.ShouldContainSubstring, "Total entries: 1")

				raw, err := os.ReadFile(output)
				convey.So(err, convey.ShouldBeNil)
				var file model.EvalsOutput
				convey.So(sonic.Unmarshal(raw, &file), convey.ShouldBeNil)
				convey.So(file.TotalEntries, convey.ShouldEqual, 1)
				convey.So(file.Leaderboard[0].Score, convey.ShouldEqual, 70.12)
				convey.So(file.Leaderboard[0].SourceURL, convey.ShouldEqual, srv.URL+"/acme/llm")
				convey.So(file.Benchmarks, convey.ShouldResemble, []string{"mmlu", "bigcodebench", "arc_mc"})
			})
		})
	})
}

func TestPointsCommand(t *testing.T) {
	convey.Convey("Given an organization on the hub", t, func() {
		srv, commits := fakeHubServer()
		defer srv.Close()
		dir := t.TempDir()
		defer setEnv(map[string]string{
			"HUBBOARD_API_BASE":     srv.URL + "/api",
			"HUBBOARD_HUB_URL":      srv.URL,
			"HUBBOARD_ENV_FILE":     filepath.Join(dir, "none.env"),
			"HUBBOARD_ORGANIZATION": "org",
		})()

		convey.Convey("When the points command runs with publishing", func() {
			var out bytes.Buffer
			output := filepath.Join(dir, "points.json")
			err := newApp(&out).Run(context.Background(), []string{
				"hubboard", "points", "--output", output, "--push-to-hub", "--repo-id", "org/board",
			})

			convey.Convey("Then members and commenters are ranked and both files are published", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Total participants: 3")
				convey.So(out.String(), convey.ShouldContainSubstring, "Total points awarded: 2")

				raw, err := os.ReadFile(output)
				convey.So(err, convey.ShouldBeNil)
				var file model.PointsOutput
				convey.So(sonic.Unmarshal(raw, &file), convey.ShouldBeNil)
				convey.So(file.Organization, convey.ShouldEqual, "org")
				convey.So(file.Leaderboard[0].Username, convey.ShouldEqual, "alice")
				convey.So(file.Leaderboard[2].Username, convey.ShouldEqual, "idle")

				convey.So(len(*commits), convey.ShouldEqual, 2)
				convey.So((*commits)[0], convey.ShouldContainSubstring, "Update leaderboard - ")
				convey.So((*commits)[1], convey.ShouldContainSubstring, "data/metadata.json")
			})
		})

		convey.Convey("When an unknown repo type is requested", func() {
			err := newApp(io.Discard).Run(context.Background(), []string{
				"hubboard", "points", "--output", filepath.Join(dir, "p.json"), "--scan-external", "--repo-type", "papers",
			})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(strings.Contains(err.Error(), "papers"), convey.ShouldBeTrue)
		})
	})
}
