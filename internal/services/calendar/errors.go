package calendar

import "errors"

// ErrEventNotFound is returned when the event does not exist or belongs to another user.
var ErrEventNotFound = errors.New("event not found")

// ErrReminderNotFound is returned when the reminder does not exist or belongs to another user.
var ErrReminderNotFound = errors.New("reminder not found")

// ErrCreateEvent is returned when event creation fails.
var ErrCreateEvent = errors.New("failed to create event")

// ErrUpdateEvent is returned when event update fails.
var ErrUpdateEvent = errors.New("failed to update event")

// ErrDeleteEvent is returned when event deletion fails.
var ErrDeleteEvent = errors.New("failed to delete event")

// ErrListEvents is returned when events listing fails.
var ErrListEvents = errors.New("failed to list events")

// ErrCreateReminder is returned when reminder creation fails.
var ErrCreateReminder = errors.New("failed to create reminder")

// ErrUpdateReminder is returned when a reminder could not be updated.
var ErrUpdateReminder = errors.New("failed to update reminder")

// ErrDeleteReminder is returned when reminder deletion fails.
var ErrDeleteReminder = errors.New("failed to delete reminder")

// ErrListReminders is returned when reminders listing fails.
var ErrListReminders = errors.New("failed to list reminders")

// ErrExportCalendar is returned when the ICS export cannot be built.
var ErrExportCalendar = errors.New("failed to export calendar")
