package calendar

import (
	"time"
)

// Engine answers day and month queries over a profile's events and
// reminders. Calendar dates are read in the engine's location.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an engine for loc; nil means time.Local.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

// Location returns the zone used for date components.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) dateOf(t time.Time) (year, month, day int) {
	lt := t.In(e.loc)
	return lt.Year(), int(lt.Month()) - 1, lt.Day()
}

func (e *Engine) onDate(t time.Time, year, month, day int) bool {
	y, m, d := e.dateOf(t)
	return y == year && m == month && d == day
}

// EventsOnDay returns events whose start falls on the given date. An event
// that crosses midnight belongs to its start day only. Input order is kept.
func (e *Engine) EventsOnDay(events []*Event, year, month, day int) ([]*Event, error) {
	if err := checkDate(year, month, day); err != nil {
		return nil, err
	}
	out := make([]*Event, 0)
	for _, ev := range events {
		if e.onDate(ev.Start, year, month, day) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// TimeRemindersOnDay returns time reminders firing on the given date.
// Location reminders never match.
func (e *Engine) TimeRemindersOnDay(reminders []*Reminder, year, month, day int) ([]*Reminder, error) {
	if err := checkDate(year, month, day); err != nil {
		return nil, err
	}
	out := make([]*Reminder, 0)
	for _, r := range reminders {
		if at, ok := r.At(); ok && e.onDate(at, year, month, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

// IsToday compares the date with now's date, ignoring time of day.
func (e *Engine) IsToday(year, month, day int, now time.Time) (bool, error) {
	if err := checkDate(year, month, day); err != nil {
		return false, err
	}
	return e.onDate(now, year, month, day), nil
}

// IsSelected compares the date with selected's date, ignoring time of day.
func (e *Engine) IsSelected(year, month, day int, selected time.Time) (bool, error) {
	return e.IsToday(year, month, day, selected)
}
