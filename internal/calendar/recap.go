package calendar

import (
	"math"
	"time"

	"alcyxob/overload/internal/domain"
)

// Recap summarizes one month of training.
type Recap struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	Sessions     int        `json:"sessions"`
	TotalSets    int        `json:"totalSets"`
	TotalMinutes int        `json:"totalMinutes"`
	AbsCount     int        `json:"absCount"`
	CardioCount  int        `json:"cardioCount"`
}

// MonthRecap totals the sessions started in the given month.
func MonthRecap(sessions []domain.Session, year int, month time.Month, loc *time.Location) Recap {
	r := Recap{Year: year, Month: month}
	for _, s := range sessions {
		started := s.StartedAt.In(loc)
		if started.Year() != year || started.Month() != month {
			continue
		}
		r.Sessions++
		for _, ex := range s.Exercises {
			r.TotalSets += len(ex.Sets)
		}
		if s.DurationSeconds != nil {
			r.TotalMinutes += int(math.Round(float64(*s.DurationSeconds) / 60))
		}
		if s.Addons != nil {
			if s.Addons.Abs {
				r.AbsCount++
			}
			if s.Addons.Cardio {
				r.CardioCount++
			}
		}
	}
	return r
}
