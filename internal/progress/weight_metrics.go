package progress

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const (
	noWeightDataMessage = "No weight history data available"
	// trends slower than this (per week) give meaningless goal estimates
	minMeaningfulWeeklyRate = 0.01
	daysPerWeek             = 7
)

type WeightMetrics struct {
	NoData       bool              `json:"noData,omitempty"`
	Message      string            `json:"message,omitempty"`
	BasicStats   *WeightBasicStats `json:"basicStats,omitempty"`
	Trends       *WeightTrends     `json:"trends,omitempty"`
	GoalTracking *GoalTracking     `json:"goalTracking,omitempty"`
}

type WeightBasicStats struct {
	TotalEntries   int     `json:"totalEntries"`
	AverageWeight  float64 `json:"averageWeight"`
	MinWeight      float64 `json:"minWeight"`
	MaxWeight      float64 `json:"maxWeight"`
	TotalChange    float64 `json:"totalChange"`
	CurrentWeight  float64 `json:"currentWeight"`
	StartingWeight float64 `json:"startingWeight"`
}

type WeightTrends struct {
	WeeklyChangeRate float64 `json:"weeklyChangeRate"`
}

// GoalTracking nil pointers are reported as null.
type GoalTracking struct {
	HasGoal               bool     `json:"hasGoal"`
	DesiredWeight         *float64 `json:"desiredWeight"`
	CurrentWeight         *float64 `json:"currentWeight"`
	DistanceToGoal        *float64 `json:"distanceToGoal"`
	InitialDistanceToGoal *float64 `json:"initialDistanceToGoal"`
	PercentageAchieved    *float64 `json:"percentageAchieved"`
	EstimatedWeeksToGoal  *float64 `json:"estimatedWeeksToGoal"`
}

func (g GoalTracking) MarshalJSON() ([]byte, error) {
	if !g.HasGoal {
		return []byte(`{"hasGoal":false}`), nil
	}
	type goalTracking GoalTracking
	return json.Marshal(goalTracking(g))
}

// ComputeWeightMetrics is a pure function of the entries and the optional goal weight.
// Entries may come in any order. Empty input yields the NoData result.
func ComputeWeightMetrics(entries []WeightEntry, goalWeight *float64) (WeightMetrics, error) {
	if len(entries) == 0 {
		return WeightMetrics{NoData: true, Message: noWeightDataMessage}, nil
	}

	for _, e := range entries {
		if e.Date.IsZero() {
			return WeightMetrics{}, pkg.NewValidationError("weight entry [%s] has no date", e.ID)
		}
		if err := validateWeight(e.Weight); err != nil {
			return WeightMetrics{}, pkg.NewValidationError("weight entry [%s] has invalid weight", e.ID)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b WeightEntry) int {
		return a.Date.Compare(b.Date)
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	sum, minWeight, maxWeight := 0.0, first.Weight, first.Weight
	for _, e := range sorted {
		sum += e.Weight
		minWeight = math.Min(minWeight, e.Weight)
		maxWeight = math.Max(maxWeight, e.Weight)
	}
	totalChange := last.Weight - first.Weight

	weeksElapsed := last.Date.Sub(first.Date).Hours() / 24 / daysPerWeek
	if weeksElapsed == 0 {
		weeksElapsed = 1
	}
	weeklyChangeRate := totalChange / weeksElapsed

	return WeightMetrics{
		BasicStats: &WeightBasicStats{
			TotalEntries:   len(sorted),
			AverageWeight:  pkg.Round(sum/float64(len(sorted)), 1),
			MinWeight:      minWeight,
			MaxWeight:      maxWeight,
			TotalChange:    pkg.Round(totalChange, 1),
			CurrentWeight:  last.Weight,
			StartingWeight: first.Weight,
		},
		Trends: &WeightTrends{
			WeeklyChangeRate: pkg.Round(weeklyChangeRate, 2),
		},
		GoalTracking: goalTracking(first.Weight, last.Weight, weeklyChangeRate, goalWeight),
	}, nil
}

func goalTracking(startingWeight, currentWeight, weeklyChangeRate float64, goalWeight *float64) *GoalTracking {
	if goalWeight == nil || math.IsNaN(*goalWeight) || math.IsInf(*goalWeight, 0) {
		return &GoalTracking{HasGoal: false}
	}
	desired := *goalWeight

	distanceToGoal := currentWeight - desired
	initialDistanceToGoal := startingWeight - desired

	var percentageAchieved *float64
	if initialDistanceToGoal != 0 {
		pct := (initialDistanceToGoal - distanceToGoal) / math.Abs(initialDistanceToGoal) * 100
		percentageAchieved = pkg.Ptr(pkg.Round(math.Max(0, pct), 1))
	}

	var estimatedWeeksToGoal *float64
	if math.Abs(weeklyChangeRate) > minMeaningfulWeeklyRate {
		// negative when the trend moves away from the goal
		if weeks := distanceToGoal / -weeklyChangeRate; weeks > 0 {
			estimatedWeeksToGoal = pkg.Ptr(pkg.Round(weeks, 1))
		}
	}

	return &GoalTracking{
		HasGoal:               true,
		DesiredWeight:         pkg.Ptr(desired),
		CurrentWeight:         pkg.Ptr(currentWeight),
		DistanceToGoal:        pkg.Ptr(pkg.Round(distanceToGoal, 1)),
		InitialDistanceToGoal: pkg.Ptr(pkg.Round(initialDistanceToGoal, 1)),
		PercentageAchieved:    percentageAchieved,
		EstimatedWeeksToGoal:  estimatedWeeksToGoal,
	}
}
