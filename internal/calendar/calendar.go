// Package calendar derives the day-keyed history view from the session list.
// Nothing here is persisted; every view is recomputed from sessions.
package calendar

import (
	"sort"
	"time"

	"alcyxob/overload/internal/domain"
)

// DateKeyLayout is the layout of day keys (YYYY-MM-DD).
const DateKeyLayout = "2006-01-02"

// DateKey returns the day key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// GroupByDay maps each local day to the sessions started on it, newest first.
func GroupByDay(sessions []domain.Session, loc *time.Location) map[string][]domain.Session {
	days := make(map[string][]domain.Session)
	for _, s := range sessions {
		k := DateKey(s.StartedAt, loc)
		days[k] = append(days[k], s)
	}
	for _, list := range days {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].StartedAt.After(list[j].StartedAt)
		})
	}
	return days
}

// Cell is one calendar grid cell. Blank padding cells have Day == 0.
type Cell struct {
	Day      int    `json:"day,omitempty"`
	Key      string `json:"key,omitempty"`
	Sessions int    `json:"sessions,omitempty"`
}

// Blank reports whether c is padding.
func (c Cell) Blank() bool { return c.Day == 0 }

// MonthGrid lays out month as Monday-first weeks, padded with blank cells so
// every row holds 7 cells.
func MonthGrid(year int, month time.Month, loc *time.Location) [][]Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7

	cells := make([]Cell, lead, lead+daysInMonth+6)
	for d := 1; d <= daysInMonth; d++ {
		cells = append(cells, Cell{
			Day: d,
			Key: time.Date(year, month, d, 0, 0, 0, 0, loc).Format(DateKeyLayout),
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{})
	}

	weeks := make([][]Cell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Index is a snapshot of the history keyed by day.
type Index struct {
	loc  *time.Location
	days map[string][]domain.Session
	byID map[string]domain.Session
}

// NewIndex builds an Index over sessions.
func NewIndex(sessions []domain.Session, loc *time.Location) *Index {
	if loc == nil {
		loc = time.Local
	}
	byID := make(map[string]domain.Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	return &Index{loc: loc, days: GroupByDay(sessions, loc), byID: byID}
}

// Day returns the sessions of the day key, newest first.
func (ix *Index) Day(key string) []domain.Session {
	return ix.days[key]
}

// Find returns the session with the given id.
func (ix *Index) Find(id string) (domain.Session, bool) {
	s, ok := ix.byID[id]
	return s, ok
}

// Month returns the grid for month with per-day session counts filled in.
func (ix *Index) Month(year int, month time.Month) [][]Cell {
	grid := MonthGrid(year, month, ix.loc)
	for _, week := range grid {
		for i := range week {
			if !week[i].Blank() {
				week[i].Sessions = len(ix.days[week[i].Key])
			}
		}
	}
	return grid
}
