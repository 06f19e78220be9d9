package timetable

import (
	"fmt"

	"timetabler/internal/domain"
)

// SplitMultiSubjectBlocks replaces each multi-subject block that lists more
// than one subject with one block per subject, dividing the slot evenly.
// The last subject ends at the parent's end time and so absorbs any rounding
// remainder, while its duration label keeps the per-subject value.
func SplitMultiSubjectBlocks(doc *domain.ScheduleDocument) {
	for i := range doc.Days {
		day := &doc.Days[i]
		if !needsSplit(day.Blocks) {
			continue
		}
		out := make([]domain.ScheduleBlock, 0, len(day.Blocks))
		for _, b := range day.Blocks {
			if b.IsMultiSubject && len(b.Subjects) > 1 {
				out = append(out, splitBlock(b)...)
				continue
			}
			out = append(out, b)
		}
		day.Blocks = out
	}
}

func needsSplit(blocks []domain.ScheduleBlock) bool {
	for _, b := range blocks {
		if b.IsMultiSubject && len(b.Subjects) > 1 {
			return true
		}
	}
	return false
}

func splitBlock(b domain.ScheduleBlock) []domain.ScheduleBlock {
	n := len(b.Subjects)
	per := floorDiv(MinutesBetween(b.StartTime, b.EndTime), n)
	label := fmt.Sprintf("%d min", per)
	notes := "Part of: " + b.Event

	parts := make([]domain.ScheduleBlock, 0, n)
	start := b.StartTime
	for i, subject := range b.Subjects {
		end := b.EndTime
		if i < n-1 {
			end = AddMinutes(start, per)
		}
		parts = append(parts, domain.ScheduleBlock{
			Event:     subject,
			StartTime: start,
			EndTime:   end,
			Duration:  label,
			Notes:     notes,
			IsSplit:   true,
		})
		start = end
	}
	return parts
}
