// Package timetable turns the raw schedule extracted by an AI model into a
// consistent, render-ready weekly timetable.
//
// Normalize runs three passes in a fixed order: recurring templates are
// expanded into the days they target, each day is sorted by start time, and
// blocks shared by several subjects are split into one block per subject.
// Every pass is pure apart from mutating the document it is given, and none
// of them fail: unreadable times count as midnight.
package timetable

import "timetabler/internal/domain"

// Normalize applies the recurring, sort and split passes to doc and returns
// it. A nil document, or one without days, is returned untouched.
func Normalize(doc *domain.ScheduleDocument) *domain.ScheduleDocument {
	if doc == nil || doc.Days == nil {
		return doc
	}
	ApplyRecurringBlocks(doc)
	SortDays(doc)
	SplitMultiSubjectBlocks(doc)
	return doc
}
