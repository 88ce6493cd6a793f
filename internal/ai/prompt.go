package ai

// PlanRequest is the survey summary sent to the generator, one section per survey area.
type PlanRequest struct {
	PersonalGoalsExperience PersonalGoalsExperience `json:"personal_goals_experience"`
	ScheduleAvailability    ScheduleAvailability    `json:"schedule_availability"`
	EquipmentAccess         EquipmentAccess         `json:"equipment_access"`
	DietaryPreferences      DietaryPreferences      `json:"dietary_preferences"`
	HealthConsiderations    HealthConsiderations    `json:"health_considerations"`
	PreferencesMotivation   PreferencesMotivation   `json:"preferences_motivation"`
}

type PersonalGoalsExperience struct {
	PrimaryFitnessGoal  string   `json:"primary_fitness_goal,omitempty"`
	CurrentWeightLbs    *float64 `json:"current_weight_lbs,omitempty"`
	DesiredWeightLbs    *float64 `json:"desired_weight_lbs,omitempty"`
	HeightInches        *float64 `json:"height_inches,omitempty"`
	CurrentFitnessLevel string   `json:"current_fitness_level,omitempty"`
	AgeGroup            string   `json:"age_group,omitempty"`
}

type ScheduleAvailability struct {
	DaysPerWeekWorkout   *float64 `json:"days_per_week_workout,omitempty"`
	PreferredWorkoutTime string   `json:"preferred_workout_time,omitempty"`
}

type EquipmentAccess struct {
	Equipment []string `json:"equipment"`
}

type DietaryPreferences struct {
	PrimaryDietaryPreference string   `json:"primary_dietary_preference,omitempty"`
	DietaryRestrictions      []string `json:"dietary_restrictions"`
	OtherRestrictions        string   `json:"other_restrictions"`
}

type HealthConsiderations struct {
	HealthConsiderations string   `json:"health_considerations"`
	WorkoutTypesToAvoid  []string `json:"workout_types_to_avoid"`
}

type PreferencesMotivation struct {
	EnjoyedWorkoutTypes []string `json:"enjoyed_workout_types"`
}

const SystemInstruction = `You generate personalized weekly workout and diet plans from a fitness survey.

Input: one JSON object with the sections personal_goals_experience, schedule_availability,
equipment_access, dietary_preferences, health_considerations and preferences_motivation.
Weights are in pounds and height in inches.

Output: one JSON object and nothing else:
{
  "weekly_plan": {
    "<monday..sunday>": {
      "workout": {
        "type": "string, e.g. Strength Training, Cardio, Rest",
        "duration_minutes": number,
        "exercises": [{"name": "string", "sets": "string", "reps": "string", "notes": "string"}],
        "notes": "string"
      },
      "diet": {
        "daily_notes": "string",
        "meals_list": [{
          "meal_type": "string, e.g. Breakfast, Lunch, Dinner, Snack",
          "description": "string",
          "macronutrient_summary": {"estimated_calories": int, "protein_grams": int, "carbs_grams": int, "fat_grams": int}
        }]
      }
    }
  },
  "general_notes": "string"
}

Rules:
1. Plan all seven days, monday to sunday.
2. Schedule as many workout days as days_per_week_workout. Other days are rest days: workout.type "Rest", duration_minutes 0 and no exercises.
3. Only use the available equipment.
4. Meals must follow the dietary preference and every restriction or allergy.
5. Never include workout types the user wants to avoid. Respect injuries and medical conditions.
6. Prefer the workout types the user enjoys.
7. Keep the language encouraging and non-judgmental.
8. general_notes must state that the plan is not medical advice.`

// planResponseSchema constrains the generator output to WeeklyPlan.
func planResponseSchema() map[string]any {
	str := map[string]any{"type": "STRING"}
	integer := map[string]any{"type": "INTEGER"}

	exercise := map[string]any{
		"type":     "OBJECT",
		"required": []string{"name", "sets", "reps", "notes"},
		"properties": map[string]any{
			"name":  str,
			"sets":  str,
			"reps":  str,
			"notes": str,
		},
	}
	meal := map[string]any{
		"type":     "OBJECT",
		"required": []string{"meal_type", "description", "macronutrient_summary"},
		"properties": map[string]any{
			"meal_type":   str,
			"description": str,
			"macronutrient_summary": map[string]any{
				"type":     "OBJECT",
				"required": []string{"estimated_calories", "protein_grams", "carbs_grams", "fat_grams"},
				"properties": map[string]any{
					"estimated_calories": integer,
					"protein_grams":      integer,
					"carbs_grams":        integer,
					"fat_grams":          integer,
				},
			},
		},
	}
	day := map[string]any{
		"type":     "OBJECT",
		"required": []string{"workout", "diet"},
		"properties": map[string]any{
			"workout": map[string]any{
				"type":     "OBJECT",
				"required": []string{"type", "duration_minutes", "exercises"},
				"properties": map[string]any{
					"type":             str,
					"duration_minutes": map[string]any{"type": "NUMBER"},
					"exercises":        map[string]any{"type": "ARRAY", "items": exercise},
					"notes":            str,
				},
			},
			"diet": map[string]any{
				"type":     "OBJECT",
				"required": []string{"meals_list"},
				"properties": map[string]any{
					"daily_notes": str,
					"meals_list":  map[string]any{"type": "ARRAY", "items": meal},
				},
			},
		},
	}

	days := make(map[string]any, len(Weekdays))
	for _, d := range Weekdays {
		days[d] = day
	}

	return map[string]any{
		"type":     "OBJECT",
		"required": []string{"weekly_plan", "general_notes"},
		"properties": map[string]any{
			"weekly_plan": map[string]any{
				"type":       "OBJECT",
				"required":   Weekdays,
				"properties": days,
			},
			"general_notes": str,
		},
	}
}
