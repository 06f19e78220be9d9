package validator

import (
	"fmt"
	"strings"

	"timetabler/internal/domain"
	"timetabler/internal/timetable"
)

func builtinRules() []Rule {
	return []Rule{
		emptyEventRule{},
		missingTimeRule{},
		endBeforeStartRule{},
		overlapRule{},
		duplicateDayRule{},
		unknownDayRule{},
	}
}

type emptyEventRule struct{}

func (emptyEventRule) Key() string { return "empty_event" }

func (r emptyEventRule) Check(doc *domain.ScheduleDocument) []Issue {
	var out []Issue
	for _, day := range doc.Days {
		for i, b := range day.Blocks {
			if strings.TrimSpace(b.Event) == "" {
				out = append(out, Issue{
					Rule: r.Key(), Severity: SeverityWarning, Day: day.Day, Block: i,
					Message: "block has no event name",
				})
			}
		}
	}
	return out
}

type missingTimeRule struct{}

func (missingTimeRule) Key() string { return "missing_time" }

func (r missingTimeRule) Check(doc *domain.ScheduleDocument) []Issue {
	var out []Issue
	for _, day := range doc.Days {
		for i, b := range day.Blocks {
			var missing []string
			if !timetable.HasClockTime(b.StartTime) {
				missing = append(missing, "start")
			}
			if !timetable.HasClockTime(b.EndTime) {
				missing = append(missing, "end")
			}
			if len(missing) == 0 {
				continue
			}
			out = append(out, Issue{
				Rule: r.Key(), Severity: SeverityWarning, Day: day.Day, Block: i, Event: b.Event,
				Message: fmt.Sprintf("no readable %s time; sorted as 00:00", strings.Join(missing, " or ")),
			})
		}
	}
	return out
}

type endBeforeStartRule struct{}

func (endBeforeStartRule) Key() string { return "end_before_start" }

func (r endBeforeStartRule) Check(doc *domain.ScheduleDocument) []Issue {
	var out []Issue
	for _, day := range doc.Days {
		for i, b := range day.Blocks {
			if !timetable.HasClockTime(b.StartTime) || !timetable.HasClockTime(b.EndTime) {
				continue
			}
			if timetable.MinutesBetween(b.StartTime, b.EndTime) <= 0 {
				out = append(out, Issue{
					Rule: r.Key(), Severity: SeverityWarning, Day: day.Day, Block: i, Event: b.Event,
					Message: fmt.Sprintf("ends at %s, not after its start %s", b.EndTime, b.StartTime),
				})
			}
		}
	}
	return out
}

// overlapRule flags a block starting before the previous timed block on the
// same day has ended.
type overlapRule struct{}

func (overlapRule) Key() string { return "overlap" }

func (r overlapRule) Check(doc *domain.ScheduleDocument) []Issue {
	var out []Issue
	for _, day := range doc.Days {
		prev := -1
		for i, b := range day.Blocks {
			if !timetable.HasClockTime(b.StartTime) || !timetable.HasClockTime(b.EndTime) {
				continue
			}
			if prev >= 0 {
				p := day.Blocks[prev]
				if timetable.ParseClockTime(b.StartTime) < timetable.ParseClockTime(p.EndTime) {
					out = append(out, Issue{
						Rule: r.Key(), Severity: SeverityInfo, Day: day.Day, Block: i, Event: b.Event,
						Message: fmt.Sprintf("starts at %s, before %q ends at %s", b.StartTime, p.Event, p.EndTime),
					})
				}
			}
			prev = i
		}
	}
	return out
}

type duplicateDayRule struct{}

func (duplicateDayRule) Key() string { return "duplicate_day" }

func (r duplicateDayRule) Check(doc *domain.ScheduleDocument) []Issue {
	var out []Issue
	seen := make(map[string]bool, len(doc.Days))
	for _, day := range doc.Days {
		if seen[day.Day] {
			out = append(out, Issue{
				Rule: r.Key(), Severity: SeverityWarning, Day: day.Day, Block: -1,
				Message: "day appears more than once",
			})
		}
		seen[day.Day] = true
	}
	return out
}

// unknownDayRule flags recurring templates naming days the document lacks.
type unknownDayRule struct{}

func (unknownDayRule) Key() string { return "unknown_day" }

func (r unknownDayRule) Check(doc *domain.ScheduleDocument) []Issue {
	days := make(map[string]bool, len(doc.Days))
	for _, day := range doc.Days {
		days[day.Day] = true
	}
	var out []Issue
	for _, tmpl := range doc.RecurringBlocks {
		for _, label := range tmpl.AppliesTo {
			if label == domain.AllDays || days[label] {
				continue
			}
			out = append(out, Issue{
				Rule: r.Key(), Severity: SeverityInfo, Day: label, Block: -1, Event: tmpl.Event,
				Message: fmt.Sprintf("recurring block targets %q, which is not in the timetable", label),
			})
		}
	}
	return out
}
