package timetable

import (
	"cmp"
	"slices"

	"timetabler/internal/domain"
)

// SortBlocks orders blocks by start time. Equal start times keep their input
// order; blocks without a readable start time sort first.
func SortBlocks(blocks []domain.ScheduleBlock) {
	slices.SortStableFunc(blocks, func(a, b domain.ScheduleBlock) int {
		return cmp.Compare(ParseClockTime(a.StartTime), ParseClockTime(b.StartTime))
	})
}

// SortDays sorts the blocks of every day in doc.
func SortDays(doc *domain.ScheduleDocument) {
	for i := range doc.Days {
		SortBlocks(doc.Days[i].Blocks)
	}
}
