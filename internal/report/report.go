// Package report prints leaderboard summaries to a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/okian/hubboard/internal/domain/model"
)

// TopN is how many rows are printed before the remainder is summarized.
const TopN = 20

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	ruleColor   = color.New(color.FgHiBlack)
	scoreColor  = color.New(color.FgGreen)
	mutedColor  = color.New(color.FgYellow)
	memberColor = color.New(color.Bold)
)

// Evaluations prints the top rows of a ranked evals leaderboard and totals.
func Evaluations(w io.Writer, rows []model.EvaluationRecord) error {
	p := &printer{w: w, width: 60}
	p.header("EVALUATION LEADERBOARD")
	for _, r := range head(rows) {
		p.linef("%-40s | %-12s | %s", r.ModelID, r.BenchmarkLabel, scoreColor.Sprintf("%6.2f", r.Score))
	}
	p.more(len(rows), "entries")
	p.rule()

	models := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		models[r.ModelID] = struct{}{}
	}
	p.linef("Total entries: %d", len(rows))
	p.linef("Models with scores: %d", len(models))
	return p.err
}

// Points prints the top rows of a ranked engagement leaderboard and totals.
func Points(w io.Writer, rows []model.UserRow) error {
	p := &printer{w: w, width: 50}
	p.header("HACKERS LEADERBOARD")
	total := 0
	for _, r := range rows {
		total += r.TotalPoints
	}
	for i, r := range head(rows) {
		name := fmt.Sprintf("%-20s", r.Username)
		if r.IsOrgMember {
			name = memberColor.Sprint(name)
		}
		p.linef("%2d. %s - %s points (discussions %d, comments %d, prs %d, repos %d)",
			i+1, name, scoreColor.Sprintf("%4d", r.TotalPoints),
			r.DiscussionsOpened, r.CommentsMade, r.PRsOpened, r.ReposOwned)
	}
	p.more(len(rows), "participants")
	p.rule()
	p.linef("Total participants: %d", len(rows))
	p.linef("Total points awarded: %d", total)
	return p.err
}

func head[T any](rows []T) []T {
	if len(rows) > TopN {
		return rows[:TopN]
	}
	return rows
}

// printer stops writing after the first error.
type printer struct {
	w     io.Writer
	width int
	err   error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) rule() {
	p.linef("%s", ruleColor.Sprint(strings.Repeat("=", p.width)))
}

func (p *printer) header(title string) {
	p.linef("")
	p.rule()
	p.linef("%s", titleColor.Sprint(title))
	p.rule()
}

func (p *printer) more(n int, noun string) {
	if n > TopN {
		p.linef("%s", mutedColor.Sprintf("   ... and %d more %s", n-TopN, noun))
	}
}
