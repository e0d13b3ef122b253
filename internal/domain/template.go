package domain

import "time"

// TemplateExercise is one planned exercise of a workout template.
type TemplateExercise struct {
	NormalizedName string `bson:"normalizedName" json:"normalizedName"`
	DisplayName    string `bson:"displayName" json:"displayName"`
	TargetSets     int    `bson:"targetSets" json:"targetSets"`
	TargetReps     *int   `bson:"targetReps,omitempty" json:"targetReps,omitempty"`
	RestSeconds    *int   `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}

// WorkoutTemplate is a reusable named workout plan. Live templates are unique
// by NormalizedName; the ID survives every update.
type WorkoutTemplate struct {
	ID             string             `bson:"id" json:"id"`
	NormalizedName string             `bson:"normalizedName" json:"normalizedName"`
	DisplayName    string             `bson:"displayName" json:"displayName"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	Exercises      []TemplateExercise `bson:"exercises" json:"exercises"`
}

// Exercise returns the template exercise with the given normalized name.
func (t *WorkoutTemplate) Exercise(normalizedName string) (TemplateExercise, bool) {
	for _, ex := range t.Exercises {
		if ex.NormalizedName == normalizedName {
			return ex, true
		}
	}
	return TemplateExercise{}, false
}
