package domain

import "time"

// Set is a single weight × reps entry inside a session exercise.
type Set struct {
	ID        string  `bson:"id" json:"id"`
	WeightKg  float64 `bson:"weightKg" json:"weightKg"`
	Reps      int     `bson:"reps" json:"reps"`
	Completed bool    `bson:"completed" json:"completed"`
}

// SessionExercise is one exercise performed in a session. Sets keep display order.
type SessionExercise struct {
	ID         string `bson:"id" json:"id"`
	ExerciseID string `bson:"exerciseId" json:"exerciseId"` // normalized name
	Name       string `bson:"name" json:"name"`
	Sets       []Set  `bson:"sets" json:"sets"`
}

// Addons are the extras recorded when a session is finalized.
type Addons struct {
	Abs    bool   `bson:"abs,omitempty" json:"abs,omitempty"`
	Cardio bool   `bson:"cardio,omitempty" json:"cardio,omitempty"`
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Session is one logged workout, in progress or finalized.
// A finalized session has EndedAt and DurationSeconds set.
type Session struct {
	ID              string            `bson:"id" json:"id"`
	Name            string            `bson:"name" json:"name"`
	StartedAt       time.Time         `bson:"startedAt" json:"startedAt"`
	EndedAt         *time.Time        `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	Exercises       []SessionExercise `bson:"exercises" json:"exercises"`
	DurationSeconds *int              `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	Addons          *Addons           `bson:"addons,omitempty" json:"addons,omitempty"`
}

// IsFinalized reports whether the session has been ended.
func (s *Session) IsFinalized() bool {
	return s.EndedAt != nil
}

// Clone returns a deep copy so callers can't mutate the owner's sets.
func (s Session) Clone() Session {
	out := s
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	if s.DurationSeconds != nil {
		d := *s.DurationSeconds
		out.DurationSeconds = &d
	}
	if s.Addons != nil {
		a := *s.Addons
		out.Addons = &a
	}
	out.Exercises = make([]SessionExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		ex.Sets = append([]Set(nil), ex.Sets...)
		out.Exercises[i] = ex
	}
	return out
}
