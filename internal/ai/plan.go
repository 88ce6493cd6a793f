package ai

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnparsablePlan = errors.New("failed to parse generated fitness plan")

const rawPreviewLen = 500

// UnparsablePlanError keeps a preview of the generator output that could not be parsed.
type UnparsablePlanError struct {
	RawPreview string
	Err        error
}

func newUnparsablePlanError(raw string, err error) *UnparsablePlanError {
	preview := raw
	if len(preview) > rawPreviewLen {
		preview = preview[:rawPreviewLen]
	}
	return &UnparsablePlanError{
		RawPreview: preview + "...",
		Err:        err,
	}
}

func (e *UnparsablePlanError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnparsablePlan, e.Err)
}

func (e *UnparsablePlanError) Is(target error) bool {
	return target == ErrUnparsablePlan
}

func (e *UnparsablePlanError) Unwrap() error {
	return e.Err
}

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type WeeklyPlan struct {
	WeeklyPlan   map[string]DayPlan `json:"weekly_plan"`
	GeneralNotes string             `json:"general_notes"`
}

type DayPlan struct {
	Workout Workout `json:"workout"`
	Diet    Diet    `json:"diet"`
}

type Workout struct {
	Type            string     `json:"type"`
	DurationMinutes float64    `json:"duration_minutes"`
	Exercises       []Exercise `json:"exercises"`
	Notes           string     `json:"notes,omitempty"`
}

type Exercise struct {
	Name        string `json:"name"`
	Sets        string `json:"sets,omitempty"`
	Reps        string `json:"reps,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

type Diet struct {
	DailyNotes string `json:"daily_notes,omitempty"`
	MealsList  []Meal `json:"meals_list"`
}

type Meal struct {
	MealType             string                `json:"meal_type"`
	Description          string                `json:"description"`
	MacronutrientSummary *MacronutrientSummary `json:"macronutrient_summary,omitempty"`
	ImageBase64          string                `json:"imageBase64,omitempty"`
}

type MacronutrientSummary struct {
	EstimatedCalories float64 `json:"estimated_calories"`
	ProteinGrams      float64 `json:"protein_grams"`
	CarbsGrams        float64 `json:"carbs_grams"`
	FatGrams          float64 `json:"fat_grams"`
}

func (p *WeeklyPlan) validate() error {
	if len(p.WeeklyPlan) == 0 {
		return errors.New("weekly_plan is empty")
	}
	for day := range p.WeeklyPlan {
		if !slices.Contains(Weekdays, day) {
			return fmt.Errorf("unexpected weekly_plan day [%s]", day)
		}
	}
	return nil
}
