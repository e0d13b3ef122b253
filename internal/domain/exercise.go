package domain

import "time"

// ExerciseStats holds the running statistics of one exercise for one user.
// It is keyed by NormalizedName, which doubles as the stored record id.
type ExerciseStats struct {
	NormalizedName string     `bson:"normalizedName" json:"normalizedName"`
	DisplayName    string     `bson:"displayName" json:"displayName"`
	LastDate       *time.Time `bson:"lastDate,omitempty" json:"lastDate,omitempty"`
	LastWeight     *float64   `bson:"lastWeight,omitempty" json:"lastWeight,omitempty"`
	LastReps       *int       `bson:"lastReps,omitempty" json:"lastReps,omitempty"`
	BestWeight     *float64   `bson:"bestWeight,omitempty" json:"bestWeight,omitempty"`
	BestReps       *int       `bson:"bestReps,omitempty" json:"bestReps,omitempty"`
	UsageCount     int        `bson:"usageCount" json:"usageCount"`
}

// RankingRow is one user's best performance for an exercise.
type RankingRow struct {
	UserID      string   `json:"uid"`
	DisplayName string   `json:"displayName"`
	BestWeight  *float64 `json:"bestWeight,omitempty"`
	BestReps    *int     `json:"bestReps,omitempty"`
}
