package plans

import (
	"encoding/json"
	"time"

	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

var ErrPlanNotFound = pkg.NewNotFoundError("Fitness plan not found")

// FitnessPlan is the single plan a user owns. Plan is stored as produced by the generator,
// CompletedDates holds distinct UTC days and is only changed by ToggleCompletion.
type FitnessPlan struct {
	UserID         string          `json:"userId"`
	Plan           json.RawMessage `json:"plan"`
	CompletedDates []time.Time     `json:"completedDates"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (p *FitnessPlan) IsCompleted(date time.Time) bool {
	day := pkg.Day(date)
	for _, d := range p.CompletedDates {
		if pkg.Day(d).Equal(day) {
			return true
		}
	}
	return false
}

type ToggleResult struct {
	Plan      *FitnessPlan
	Date      time.Time
	Completed bool
}
