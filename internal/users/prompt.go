package users

import (
	"github.com/cheongchoi112/ai-fitness-api/internal/ai"
)

// FormatForAI maps the survey answers onto the generator request.
// Multiple choice answers contribute their first choice where a single value is expected.
func FormatForAI(p Profile) ai.PlanRequest {
	healthConsiderations := p.HealthConsiderations
	if healthConsiderations == "" {
		healthConsiderations = "None"
	}

	return ai.PlanRequest{
		PersonalGoalsExperience: ai.PersonalGoalsExperience{
			PrimaryFitnessGoal:  p.FitnessGoals.First(),
			CurrentWeightLbs:    p.CurrentWeight.Ptr(),
			DesiredWeightLbs:    p.DesiredWeight.Ptr(),
			HeightInches:        p.Height.Ptr(),
			CurrentFitnessLevel: p.FitnessLevel,
			AgeGroup:            p.AgeGroup,
		},
		ScheduleAvailability: ai.ScheduleAvailability{
			DaysPerWeekWorkout:   p.WorkoutDaysPerWeek.Ptr(),
			PreferredWorkoutTime: p.PreferredWorkoutTime,
		},
		EquipmentAccess: ai.EquipmentAccess{
			Equipment: orEmpty(p.AvailableEquipment),
		},
		DietaryPreferences: ai.DietaryPreferences{
			PrimaryDietaryPreference: p.DietaryPreferences.First(),
			DietaryRestrictions:      orEmpty(p.DietaryRestrictions),
			OtherRestrictions:        p.OtherRestrictions,
		},
		HealthConsiderations: ai.HealthConsiderations{
			HealthConsiderations: healthConsiderations,
			WorkoutTypesToAvoid:  orEmpty(p.WorkoutsToAvoid),
		},
		PreferencesMotivation: ai.PreferencesMotivation{
			EnjoyedWorkoutTypes: orEmpty(p.EnjoyedWorkouts),
		},
	}
}

func orEmpty(l StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
