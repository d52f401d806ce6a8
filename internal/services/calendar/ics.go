package calendar

import (
	"context"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const icsProductID = "-//notely//calendar export//EN"

// BuildICS renders events as a VCALENDAR. All-day events are written as
// DATE values in loc. Time reminders attached to an event become display
// alarms on it.
func BuildICS(events []*Event, reminders []*Reminder, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	byEvent := make(map[bson.ObjectID][]*Reminder)
	for _, r := range reminders {
		if r.EventID == nil {
			continue
		}
		if _, ok := r.At(); ok {
			byEvent[*r.EventID] = append(byEvent[*r.EventID], r)
		}
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("notely")

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID.Hex() + "@notely")
		ve.SetDtStampTime(stamp.UTC())
		ve.SetCreatedTime(ev.CreatedAt.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}

		if ev.AllDay {
			start := ev.Start.In(loc)
			end := ev.End.In(loc)
			if end.Before(start) {
				end = start
			}
			ve.SetAllDayStartAt(start)
			// DTEND of a DATE event is exclusive.
			ve.SetAllDayEndAt(end.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}

		if len(ev.Tags) > 0 {
			ve.AddCategory(strings.Join(ev.Tags, ","))
		}
		if ev.Color != "" {
			ve.SetProperty(ical.ComponentPropertyColor, ev.Color)
		}

		for _, r := range byEvent[ev.ID] {
			at, _ := r.At()
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(at.UTC().Format("20060102T150405Z"), ical.WithValue(string(ical.ValueDataTypeDateTime)))
			alarm.SetDescription(r.Title)
		}
	}

	return cal.Serialize()
}

// ExportICS renders all events of the profile as an iCalendar document.
func (s *Service) ExportICS(ctx context.Context, profileID string) (string, error) {
	evs, err := s.ListEvents(ctx, profileID)
	if err != nil {
		return "", err
	}
	rs, err := s.ListReminders(ctx, profileID)
	if err != nil {
		return "", err
	}
	return BuildICS(evs, rs, s.engine.Location(), s.now()), nil
}
