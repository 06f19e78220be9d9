package domain

import (
	"encoding/json"
	"strings"
)

// AllDays is the appliesTo sentinel that targets every day of a document.
const AllDays = "all"

// ScheduleDocument is a weekly timetable as extracted by the AI backend and
// reshaped by the normalization pipeline. A nil Days slice means the
// extraction carried no days at all.
type ScheduleDocument struct {
	Title           string                   `json:"title,omitempty"`
	Metadata        map[string]any           `json:"metadata,omitempty"`
	Days            []DaySchedule            `json:"days,omitempty"`
	RecurringBlocks []RecurringBlockTemplate `json:"recurringBlocks,omitempty"`
}

// DaySchedule holds the blocks for one day label, e.g. "Monday".
type DaySchedule struct {
	Day    string          `json:"day"`
	Blocks []ScheduleBlock `json:"blocks"`
}

// ScheduleBlock is a single timetable entry.
type ScheduleBlock struct {
	Event          string   `json:"event"`
	StartTime      string   `json:"startTime,omitempty"`
	EndTime        string   `json:"endTime,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	IsRecurring    bool     `json:"isRecurring,omitempty"`
	IsMultiSubject bool     `json:"isMultiSubject,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	IsSplit        bool     `json:"isSplit,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Color          string   `json:"color,omitempty"`
	Teacher        string   `json:"teacher,omitempty"`
	Room           string   `json:"room,omitempty"`
}

// RecurringBlockTemplate describes an event repeated on a set of days.
type RecurringBlockTemplate struct {
	Event     string  `json:"event"`
	StartTime string  `json:"startTime,omitempty"`
	EndTime   string  `json:"endTime,omitempty"`
	Duration  string  `json:"duration,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	AppliesTo DayList `json:"appliesTo,omitempty"`
}

// DayList is an ordered list of day labels. It decodes from either a JSON
// array or a single comma separated string ("all", "Monday, Tuesday").
type DayList []string

// UnmarshalJSON accepts an array of strings, a string, or null.
func (d *DayList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*d = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out DayList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*d = out
	return nil
}

// Matches reports whether the list targets the given day label.
func (d DayList) Matches(day string) bool {
	for _, v := range d {
		if v == day || v == AllDays {
			return true
		}
	}
	return false
}
