package app

import (
	"math"
	"sort"

	"quiz-app-service/internal/domain"
)

// RankQuizResults orders results by score (desc), then time taken (asc), then
// completion time (asc), and keeps the first limit entries. limit <= 0 keeps all.
// The input slice is not modified.
func RankQuizResults(results []domain.QuizResult, limit int) []domain.QuizResult {
	ranked := make([]domain.QuizResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TimeTaken != b.TimeTaken {
			return a.TimeTaken < b.TimeTaken
		}
		return a.CompletedAt.Before(b.CompletedAt)
	})

	return truncate(ranked, limit)
}

// RankUsers groups results by user and orders the groups by total score (desc), then
// average percentage (desc), then user ID. UserName is left empty.
func RankUsers(results []domain.QuizResult, limit int) []domain.UserRanking {
	type acc struct {
		score   int
		count   int
		percent float64
	}
	groups := make(map[string]*acc)
	for _, r := range results {
		g, ok := groups[r.UserID]
		if !ok {
			g = &acc{}
			groups[r.UserID] = g
		}
		g.score += r.Score
		g.count++
		g.percent += r.PercentageScore
	}

	rankings := make([]domain.UserRanking, 0, len(groups))
	for userID, g := range groups {
		rankings = append(rankings, domain.UserRanking{
			UserID:       userID,
			TotalScore:   g.score,
			QuizzesTaken: g.count,
			AverageScore: round2(g.percent / float64(g.count)),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.UserID < b.UserID
	})

	return truncate(rankings, limit)
}

// ComputeUserStats folds all results of one user. No results yields the zero value.
func ComputeUserStats(results []domain.QuizResult) domain.UserStats {
	var stats domain.UserStats
	if len(results) == 0 {
		return stats
	}
	var percent float64
	for _, r := range results {
		stats.TotalQuizzes++
		stats.TotalScore += r.Score
		stats.TotalTimeTaken += r.TimeTaken
		percent += r.PercentageScore
	}
	stats.AverageScore = percent / float64(stats.TotalQuizzes)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
