package calendar

import "time"

// DayCell is one day of a rendered month.
type DayCell struct {
	Day           int  `json:"day"`
	IsToday       bool `json:"is_today"`
	IsSelected    bool `json:"is_selected"`
	EventCount    int  `json:"event_count"`
	ReminderCount int  `json:"reminder_count"`
}

// MonthView is a month grid. Offset blank cells precede Days[0].
type MonthView struct {
	Year   int       `json:"year"`
	Month  int       `json:"month"`
	Offset int       `json:"offset"`
	Days   []DayCell `json:"days"`
}

// DayBucket holds what falls on one date.
type DayBucket struct {
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Day       int         `json:"day"`
	Events    []*Event    `json:"events"`
	Reminders []*Reminder `json:"reminders"`
}

// MonthGrid renders year/month with per-day event and time-reminder counts.
// selected may be nil.
func (e *Engine) MonthGrid(year, month int, events []*Event, reminders []*Reminder, now time.Time, selected *time.Time) (*MonthView, error) {
	n, err := DaysInMonth(year, month)
	if err != nil {
		return nil, err
	}
	offset, err := FirstWeekdayOffset(year, month)
	if err != nil {
		return nil, err
	}

	days := make([]DayCell, n)
	for i := range days {
		days[i].Day = i + 1
	}

	inMonth := func(t time.Time) (int, bool) {
		y, m, d := e.dateOf(t)
		return d, y == year && m == month
	}

	for _, ev := range events {
		if d, ok := inMonth(ev.Start); ok {
			days[d-1].EventCount++
		}
	}
	for _, r := range reminders {
		if at, ok := r.At(); ok {
			if d, ok := inMonth(at); ok {
				days[d-1].ReminderCount++
			}
		}
	}
	if d, ok := inMonth(now); ok {
		days[d-1].IsToday = true
	}
	if selected != nil {
		if d, ok := inMonth(*selected); ok {
			days[d-1].IsSelected = true
		}
	}

	return &MonthView{Year: year, Month: month, Offset: offset, Days: days}, nil
}

// Day collects the events and time reminders of one date.
func (e *Engine) Day(year, month, day int, events []*Event, reminders []*Reminder) (*DayBucket, error) {
	evs, err := e.EventsOnDay(events, year, month, day)
	if err != nil {
		return nil, err
	}
	rems, err := e.TimeRemindersOnDay(reminders, year, month, day)
	if err != nil {
		return nil, err
	}
	return &DayBucket{Year: year, Month: month, Day: day, Events: evs, Reminders: rems}, nil
}

// monthRange returns [first instant of month, first instant of next month) in loc.
func (e *Engine) monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, e.loc)
	return from, from.AddDate(0, 1, 0)
}

// dayRange returns [midnight, next midnight) of the date in loc.
func (e *Engine) dayRange(year, month, day int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, e.loc)
	return from, from.AddDate(0, 0, 1)
}
