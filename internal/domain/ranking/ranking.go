// Package ranking orders leaderboard rows.
package ranking

import (
	"slices"

	"github.com/okian/hubboard/internal/domain/model"
)

// Descending returns a copy of items sorted by key, highest first.
// Items with equal keys keep their input order.
func Descending[T any, K int | float64](items []T, key func(T) K) []T {
	out := append(make([]T, 0, len(items)), items...)
	slices.SortStableFunc(out, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
	return out
}

// Evaluations sorts records by score, highest first.
func Evaluations(records []model.EvaluationRecord) []model.EvaluationRecord {
	return Descending(records, func(r model.EvaluationRecord) float64 { return r.Score })
}

// Users sorts rows by total points, highest first.
func Users(rows []model.UserRow) []model.UserRow {
	return Descending(rows, func(r model.UserRow) int { return r.TotalPoints })
}
