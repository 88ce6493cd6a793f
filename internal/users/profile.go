package users

import (
	"encoding/json"
	"time"

	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

var (
	ErrUserNotFound    = pkg.NewNotFoundError("User not found")
	ErrProfileNotFound = pkg.NewNotFoundError("User profile not found")
)

// StringList accepts a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = StringList{}
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// First is the primary answer of a multiple choice question.
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// Profile holds the survey answers. Fields the service does not know are kept in Extra
// and written back unchanged.
type Profile struct {
	FitnessGoals         StringList    `json:"fitnessGoals,omitzero"`
	CurrentWeight        pkg.FlexFloat `json:"currentWeight,omitzero"`
	DesiredWeight        pkg.FlexFloat `json:"desiredWeight,omitzero"`
	Height               pkg.FlexFloat `json:"height,omitzero"`
	FitnessLevel         string        `json:"fitnessLevel,omitempty"`
	AgeGroup             string        `json:"ageGroup,omitempty"`
	WorkoutDaysPerWeek   pkg.FlexFloat `json:"workoutDaysPerWeek,omitzero"`
	PreferredWorkoutTime string        `json:"preferredWorkoutTime,omitempty"`
	AvailableEquipment   StringList    `json:"availableEquipment,omitzero"`
	DietaryPreferences   StringList    `json:"dietaryPreferences,omitzero"`
	DietaryRestrictions  StringList    `json:"dietaryRestrictions,omitzero"`
	OtherRestrictions    string        `json:"otherRestrictions,omitempty"`
	HealthConsiderations string        `json:"healthConsiderations,omitempty"`
	EnjoyedWorkouts      StringList    `json:"enjoyedWorkouts,omitzero"`
	WorkoutsToAvoid      StringList    `json:"workoutsToAvoid,omitzero"`

	Extra map[string]json.RawMessage `json:"-"`
}

var profileKeys = []string{
	"fitnessGoals", "currentWeight", "desiredWeight", "height", "fitnessLevel", "ageGroup",
	"workoutDaysPerWeek", "preferredWorkoutTime", "availableEquipment", "dietaryPreferences",
	"dietaryRestrictions", "otherRestrictions", "healthConsiderations", "enjoyedWorkouts",
	"workoutsToAvoid",
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	type profile Profile
	var known profile
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := extraFields(data, profileKeys)
	if err != nil {
		return err
	}
	*p = Profile(known)
	p.Extra = extra
	return nil
}

func (p Profile) MarshalJSON() ([]byte, error) {
	type profile Profile
	return marshalWithExtra(profile(p), p.Extra)
}

type UserInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var userInfoKeys = []string{"email", "firstName", "lastName"}

func (u *UserInfo) UnmarshalJSON(data []byte) error {
	type userInfo UserInfo
	var known userInfo
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := extraFields(data, userInfoKeys)
	if err != nil {
		return err
	}
	*u = UserInfo(known)
	u.Extra = extra
	return nil
}

func (u UserInfo) MarshalJSON() ([]byte, error) {
	type userInfo UserInfo
	return marshalWithExtra(userInfo(u), u.Extra)
}

type User struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	UserInfo  UserInfo  `json:"userInfo"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OnboardingRequest struct {
	UserInfo *UserInfo `json:"userInfo"`
	Profile  *Profile  `json:"profile"`
}

type DeleteResult struct {
	UserDeleted bool `json:"userDeleted"`
	PlanDeleted bool `json:"planDeleted"`
}

func extraFields(data []byte, knownKeys []string) (map[string]json.RawMessage, error) {
	all := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	knownJson, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return knownJson, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(knownJson, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
