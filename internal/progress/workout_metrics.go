package progress

import (
	"math"
	"slices"
	"time"

	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const noWorkoutDataMessage = "No workout history data available"

type WorkoutMetrics struct {
	NoData     bool              `json:"noData,omitempty"`
	Message    string            `json:"message,omitempty"`
	Frequency  *WorkoutFrequency `json:"frequency,omitempty"`
	MostRecent *WorkoutEntry     `json:"mostRecent,omitempty"`
}

type WorkoutFrequency struct {
	TotalWorkouts   int     `json:"totalWorkouts"`
	WorkoutsPerWeek float64 `json:"workoutsPerWeek"`
	DaysTracked     int     `json:"daysTracked"`
	LongestStreak   int     `json:"longestStreak"`
}

// ComputeWorkoutMetrics counts every entry, but streaks are computed
// over distinct UTC calendar days.
func ComputeWorkoutMetrics(entries []WorkoutEntry) (WorkoutMetrics, error) {
	if len(entries) == 0 {
		return WorkoutMetrics{NoData: true, Message: noWorkoutDataMessage}, nil
	}

	for _, e := range entries {
		if e.Date.IsZero() {
			return WorkoutMetrics{}, pkg.NewValidationError("workout entry [%s] has no date", e.ID)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b WorkoutEntry) int {
		return a.Date.Compare(b.Date)
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	daysTracked := max(1, int(math.Round(last.Date.Sub(first.Date).Hours()/24)))
	workoutsPerWeek := float64(len(sorted)) / (float64(daysTracked) / daysPerWeek)

	mostRecent := last
	return WorkoutMetrics{
		Frequency: &WorkoutFrequency{
			TotalWorkouts:   len(sorted),
			WorkoutsPerWeek: pkg.Round(workoutsPerWeek, 1),
			DaysTracked:     daysTracked,
			LongestStreak:   longestStreak(sorted),
		},
		MostRecent: &mostRecent,
	}, nil
}

// longestStreak expects entries sorted by date.
func longestStreak(sorted []WorkoutEntry) int {
	days := make([]time.Time, 0, len(sorted))
	for _, e := range sorted {
		day := pkg.Day(e.Date)
		if len(days) > 0 && days[len(days)-1].Equal(day) {
			continue
		}
		days = append(days, day)
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}
	return longest
}
