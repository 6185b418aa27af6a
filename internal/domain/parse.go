package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptySpec  = errors.New("empty reminder spec")
	ErrBadDay     = errors.New("unrecognized day")
	ErrBadWeekday = errors.New("unrecognized weekday")
	ErrBadClock   = errors.New("invalid time of day")
	ErrPastTime   = errors.New("time already passed")
	ErrNoMessage  = errors.New("missing reminder text")
)

// ParsedReminder is the outcome of parsing a /remind argument list.
type ParsedReminder struct {
	RemindAt    time.Time // UTC
	IsRecurring bool
	Pattern     Recurrence
	Message     string
}

// ParseRemindSpec parses the /remind argument grammar:
//
//	today 15:30 pay the crew
//	tomorrow 09:00 stand-up with the capos
//	25/12 23:59 close the books
//	weekly monday 10:00 family meeting
//
// Day and time are interpreted in loc relative to now; the result is UTC.
func ParseRemindSpec(args []string, now time.Time, loc *time.Location) (ParsedReminder, error) {
	if len(args) == 0 {
		return ParsedReminder{}, ErrEmptySpec
	}
	if strings.EqualFold(args[0], "weekly") {
		return parseWeeklySpec(args[1:], now, loc)
	}
	return parseOneShotSpec(args, now, loc)
}

func parseOneShotSpec(args []string, now time.Time, loc *time.Location) (ParsedReminder, error) {
	if len(args) < 3 {
		return ParsedReminder{}, ErrNoMessage
	}
	localNow := now.In(loc)

	day, err := parseDay(args[0], localNow)
	if err != nil {
		return ParsedReminder{}, err
	}
	hh, mm, err := parseClock(args[1])
	if err != nil {
		return ParsedReminder{}, err
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, loc)
	if !at.After(localNow) {
		return ParsedReminder{}, fmt.Errorf("%w: %s", ErrPastTime, at.Format("02/01 15:04"))
	}
	return ParsedReminder{
		RemindAt: at.UTC(),
		Message:  strings.Join(args[2:], " "),
	}, nil
}

func parseWeeklySpec(args []string, now time.Time, loc *time.Location) (ParsedReminder, error) {
	if len(args) < 3 {
		return ParsedReminder{}, ErrNoMessage
	}
	wd, err := parseWeekday(args[0])
	if err != nil {
		return ParsedReminder{}, err
	}
	hh, mm, err := parseClock(args[1])
	if err != nil {
		return ParsedReminder{}, err
	}

	localNow := now.In(loc)
	at := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hh, mm, 0, 0, loc)
	at = at.AddDate(0, 0, int((wd-localNow.Weekday()+7)%7))
	if !at.After(localNow) {
		at = at.AddDate(0, 0, 7)
	}
	return ParsedReminder{
		RemindAt:    at.UTC(),
		IsRecurring: true,
		Pattern:     RecurrenceWeekly,
		Message:     strings.Join(args[2:], " "),
	}, nil
}

// parseDay resolves "today", "tomorrow" or an explicit DD/MM date against
// the local calendar. A DD/MM date already past this year rolls to next year.
func parseDay(s string, localNow time.Time) (time.Time, error) {
	switch strings.ToLower(s) {
	case "today":
		return localNow, nil
	case "tomorrow":
		return localNow.AddDate(0, 0, 1), nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDay, s)
	}
	d, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || d < 1 || d > 31 || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDay, s)
	}

	day := time.Date(localNow.Year(), time.Month(m), d, 0, 0, 0, 0, localNow.Location())
	if day.Day() != d || day.Month() != time.Month(m) {
		// Normalization moved the date, so it does not exist (e.g. 31/02).
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDay, s)
	}
	midnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, localNow.Location())
	if day.Before(midnight) {
		day = day.AddDate(1, 0, 0)
	}
	return day, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdays[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadWeekday, s)
}

// parseClock parses HH:MM on a 24-hour clock.
func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	hh, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return hh, mm, nil
}
