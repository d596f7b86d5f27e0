package ingest

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsableTimestamp is returned when no known layout matches.
var ErrUnparsableTimestamp = errors.New("ingest: unparsable timestamp")

// The intake form wrote timestamps in whatever format the submitting device
// produced. The localized datetime pattern carries an optional AM/PM marker
// (오전/오후) in front of the clock.
var (
	koreanDateTimePattern = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\s*(오전|오후)?\s*(\d{1,2}):(\d{1,2}):(\d{1,2})$`)
	koreanDatePattern     = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})$`)

	yearFirstPattern  = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	monthFirstPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// ParseTimestamp parses the formats the intake forms actually produce:
// RFC3339, "2006-01-02 15:04:05", the localized "2025. 6. 17 오전 10:54:00"
// form with an optional AM/PM marker, bare dotted dates, and year-first or
// month-first separator dates. Date-only inputs come back at midnight in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrUnparsableTimestamp
	}

	for _, layout := range datetimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}

	if m := koreanDateTimePattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[5])
		minute, _ := strconv.Atoi(m[6])
		second, _ := strconv.Atoi(m[7])
		switch m[4] {
		case "오후":
			if hour != 12 {
				hour += 12
			}
		case "오전":
			if hour == 12 {
				hour = 0
			}
		}
		return makeDate(year, month, day, hour, minute, second, loc)
	}

	if m := koreanDatePattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day, 0, 0, 0, loc)
	}

	if m := yearFirstPattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day, 0, 0, 0, loc)
	}

	if m := monthFirstPattern.FindStringSubmatch(value); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day, 0, 0, 0, loc)
	}

	return time.Time{}, ErrUnparsableTimestamp
}

// makeDate rejects inputs that time.Date would silently normalize, like a
// month of 13 or February 30.
func makeDate(year, month, day, hour, minute, second int, loc *time.Location) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrUnparsableTimestamp
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, ErrUnparsableTimestamp
	}
	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if ts.Day() != day || ts.Month() != time.Month(month) {
		return time.Time{}, ErrUnparsableTimestamp
	}
	return ts, nil
}
