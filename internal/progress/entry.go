package progress

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

var (
	ErrWeightEntryNotFound  = pkg.NewNotFoundError("Weight entry not found")
	ErrWorkoutEntryNotFound = pkg.NewNotFoundError("Workout entry not found")
	ErrUserNotFound         = pkg.NewNotFoundError("User not found")
)

type WeightEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	Weight    float64   `json:"weight"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkoutEntry records a completed workout. Several entries may share a date.
type WorkoutEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	WorkoutID *string   `json:"workoutId,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DateRange bounds are inclusive, nil means unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (dr DateRange) IsAllTime() bool {
	return dr.Start == nil && dr.End == nil
}

// MarshalJSON renders "all-time" for an unbounded range.
func (dr DateRange) MarshalJSON() ([]byte, error) {
	if dr.IsAllTime() {
		return json.Marshal("all-time")
	}
	return json.Marshal(struct {
		StartDate *time.Time `json:"startDate,omitempty"`
		EndDate   *time.Time `json:"endDate,omitempty"`
	}{
		StartDate: dr.Start,
		EndDate:   dr.End,
	})
}

// NewDateRange parses optional startDate / endDate query values.
// A date-only endDate covers that whole day.
func NewDateRange(startDate, endDate string) (DateRange, error) {
	var dr DateRange
	if strings.TrimSpace(startDate) != "" {
		start, _, err := pkg.ParseDate(startDate)
		if err != nil {
			return DateRange{}, pkg.NewValidationError("invalid startDate [%s]", startDate)
		}
		dr.Start = &start
	}
	if strings.TrimSpace(endDate) != "" {
		end, dateOnly, err := pkg.ParseDate(endDate)
		if err != nil {
			return DateRange{}, pkg.NewValidationError("invalid endDate [%s]", endDate)
		}
		if dateOnly {
			end = pkg.EndOfDay(end)
		}
		dr.End = &end
	}
	if dr.Start != nil && dr.End != nil && dr.Start.After(*dr.End) {
		return DateRange{}, pkg.NewValidationError("startDate must not be after endDate")
	}
	return dr, nil
}

type WeightEntryRequest struct {
	Date   *string       `json:"date"`
	Weight pkg.FlexFloat `json:"weight"`
	Notes  *string       `json:"notes"`
}

type WeightUpdate struct {
	Date   *time.Time
	Weight *float64
	Notes  *string
}

func (r WeightEntryRequest) toEntry(userID string) (WeightEntry, error) {
	if r.Date == nil || !r.Weight.Valid {
		return WeightEntry{}, pkg.NewValidationError("Date and weight are required")
	}
	date, _, err := pkg.ParseDate(*r.Date)
	if err != nil {
		return WeightEntry{}, err
	}
	if err := validateWeight(r.Weight.Value); err != nil {
		return WeightEntry{}, err
	}
	return WeightEntry{
		UserID: userID,
		Date:   date,
		Weight: r.Weight.Value,
		Notes:  r.Notes,
	}, nil
}

func (r WeightEntryRequest) toUpdate() (WeightUpdate, error) {
	if r.Date == nil && !r.Weight.Valid && r.Notes == nil {
		return WeightUpdate{}, pkg.NewValidationError("No update data provided")
	}
	update := WeightUpdate{Notes: r.Notes}
	if r.Date != nil {
		date, _, err := pkg.ParseDate(*r.Date)
		if err != nil {
			return WeightUpdate{}, err
		}
		update.Date = &date
	}
	if r.Weight.Valid {
		if err := validateWeight(r.Weight.Value); err != nil {
			return WeightUpdate{}, err
		}
		update.Weight = pkg.Ptr(r.Weight.Value)
	}
	return update, nil
}

func validateWeight(weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return pkg.NewValidationError("weight must be a positive number")
	}
	return nil
}

type WorkoutEntryRequest struct {
	Date      *string `json:"date"`
	WorkoutID *string `json:"workoutId"`
	Notes     *string `json:"notes"`
}

type WorkoutUpdate struct {
	Date      *time.Time
	WorkoutID *string
	Notes     *string
}

func (r WorkoutEntryRequest) toEntry(userID string) (WorkoutEntry, error) {
	if r.Date == nil {
		return WorkoutEntry{}, pkg.NewValidationError("Workout date is required")
	}
	date, _, err := pkg.ParseDate(*r.Date)
	if err != nil {
		return WorkoutEntry{}, err
	}
	return WorkoutEntry{
		UserID:    userID,
		Date:      date,
		WorkoutID: r.WorkoutID,
		Notes:     r.Notes,
	}, nil
}

func (r WorkoutEntryRequest) toUpdate() (WorkoutUpdate, error) {
	if r.Date == nil && r.WorkoutID == nil && r.Notes == nil {
		return WorkoutUpdate{}, pkg.NewValidationError("No update data provided")
	}
	update := WorkoutUpdate{
		WorkoutID: r.WorkoutID,
		Notes:     r.Notes,
	}
	if r.Date != nil {
		date, _, err := pkg.ParseDate(*r.Date)
		if err != nil {
			return WorkoutUpdate{}, err
		}
		update.Date = &date
	}
	return update, nil
}
