package timetable

import "timetabler/internal/domain"

const defaultRecurringNote = "Daily recurring event"

// ApplyRecurringBlocks appends every recurring template to the days it
// targets. A day that already has a block with the template's event and
// start time is left alone. Blocks are appended, never reordered.
func ApplyRecurringBlocks(doc *domain.ScheduleDocument) {
	for _, tpl := range doc.RecurringBlocks {
		for i := range doc.Days {
			day := &doc.Days[i]
			if !tpl.AppliesTo.Matches(day.Day) {
				continue
			}
			if hasBlock(day.Blocks, tpl.Event, tpl.StartTime) {
				continue
			}
			day.Blocks = append(day.Blocks, blockFromTemplate(tpl))
		}
	}
}

func hasBlock(blocks []domain.ScheduleBlock, event, start string) bool {
	for _, b := range blocks {
		if b.Event == event && b.StartTime == start {
			return true
		}
	}
	return false
}

func blockFromTemplate(tpl domain.RecurringBlockTemplate) domain.ScheduleBlock {
	duration := tpl.Duration
	if duration == "" {
		duration = HumanizeDuration(MinutesBetween(tpl.StartTime, tpl.EndTime))
	}
	notes := tpl.Notes
	if notes == "" {
		notes = defaultRecurringNote
	}
	return domain.ScheduleBlock{
		Event:       tpl.Event,
		StartTime:   tpl.StartTime,
		EndTime:     tpl.EndTime,
		Duration:    duration,
		IsRecurring: true,
		Notes:       notes,
	}
}
