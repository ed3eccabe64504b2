// Package scoring reads benchmark scores out of a repository's model-index
// metadata and keeps the best score per benchmark.
package scoring

import (
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/okian/hubboard/internal/domain/benchmark"
	"github.com/okian/hubboard/internal/domain/model"
)

// Source describes where a model-index block was read from.
type Source struct {
	RepoID      string
	Contributor string
	Kind        model.SourceKind
	URL         string
	Revision    string
}

// Scores holds at most one record per benchmark key for a single repository.
// Keys keep the order in which they were first seen.
type Scores struct {
	order []string
	best  map[string]model.EvaluationRecord
}

// NewScores returns an empty set.
func NewScores() *Scores {
	return &Scores{best: make(map[string]model.EvaluationRecord)}
}

// Offer keeps rec when its key is new or its score is strictly higher than
// the stored one. It reports whether rec was kept.
func (s *Scores) Offer(rec model.EvaluationRecord) bool {
	cur, ok := s.best[rec.BenchmarkKey]
	if !ok {
		s.order = append(s.order, rec.BenchmarkKey)
		s.best[rec.BenchmarkKey] = rec
		return true
	}
	if rec.Score > cur.Score {
		s.best[rec.BenchmarkKey] = rec
		return true
	}
	return false
}

// Len returns the number of benchmarks with a score.
func (s *Scores) Len() int { return len(s.order) }

// Get returns the stored record for key.
func (s *Scores) Get(key string) (model.EvaluationRecord, bool) {
	rec, ok := s.best[key]
	return rec, ok
}

// Records flattens the set into rows with scores rounded to two decimals
// and the collection time stamped on each.
func (s *Scores) Records(collectedAt time.Time) []model.EvaluationRecord {
	out := make([]model.EvaluationRecord, 0, len(s.order))
	for _, key := range s.order {
		rec := s.best[key]
		rec.Score = Round2(rec.Score)
		rec.CollectedAt = collectedAt
		out = append(out, rec)
	}
	return out
}

type indexEntry struct {
	Name    string `mapstructure:"name"`
	Results []any  `mapstructure:"results"`
}

type indexResult struct {
	Task struct {
		Type string `mapstructure:"type"`
	} `mapstructure:"task"`
	Dataset struct {
		Name string `mapstructure:"name"`
		Type string `mapstructure:"type"`
	} `mapstructure:"dataset"`
	Metrics []any `mapstructure:"metrics"`
}

type indexMetric struct {
	Name  string `mapstructure:"name"`
	Type  string `mapstructure:"type"`
	Value any    `mapstructure:"value"`
	Unit  string `mapstructure:"unit"`
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Extract walks a model-index value and returns the best score per matched
// benchmark. Entries, results and metrics with an unexpected shape are
// skipped; an index that is not a list yields an empty set.
func Extract(index any, catalog *benchmark.Catalog, src Source) *Scores {
	scores := NewScores()
	entries, ok := index.([]any)
	if !ok {
		return scores
	}
	for _, raw := range entries {
		var entry indexEntry
		if err := decode(raw, &entry); err != nil {
			continue
		}
		modelName := entry.Name
		if modelName == "" {
			modelName = lastSegment(src.RepoID)
		}
		for _, rawResult := range entry.Results {
			var res indexResult
			if err := decode(rawResult, &res); err != nil {
				continue
			}
			for _, rawMetric := range res.Metrics {
				var m indexMetric
				if err := decode(rawMetric, &m); err != nil {
					continue
				}
				def, ok := catalog.Match(res.Dataset.Name, res.Dataset.Type, m.Name, m.Type)
				if !ok {
					continue
				}
				value, ok := Coerce(m.Value)
				if !ok {
					continue
				}
				scores.Offer(model.EvaluationRecord{
					ModelID:        src.RepoID,
					ModelName:      modelName,
					BenchmarkKey:   def.Key,
					BenchmarkLabel: def.Label,
					Score:          value,
					Unit:           InferUnit(m.Value, m.Unit),
					Dataset:        firstNonEmpty(res.Dataset.Name, res.Dataset.Type),
					TaskType:       res.Task.Type,
					MetricName:     firstNonEmpty(m.Name, m.Type),
					Contributor:    src.Contributor,
					SourceType:     src.Kind,
					SourceURL:      src.URL,
					Revision:       src.Revision,
				})
			}
		}
	}
	return scores
}

func lastSegment(repoID string) string {
	for i := len(repoID) - 1; i >= 0; i-- {
		if repoID[i] == '/' {
			return repoID[i+1:]
		}
	}
	return repoID
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
