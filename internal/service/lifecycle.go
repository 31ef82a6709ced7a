package service

import (
	"time"

	"github.com/examforge/examforge-backend/internal/model"
)

// AdvanceExamStatus computes the status an exam should hold at the given
// instant. Transitions are driven purely by the schedule window:
//
//	DRAFT/SCHEDULED → COMPLETED  when the window was missed entirely
//	DRAFT/SCHEDULED → ACTIVE     once the start time is reached
//	ACTIVE          → COMPLETED  once the end time is reached
//
// COMPLETED and CANCELLED never move on their own. The second return reports
// whether the status changed, so callers only write back real transitions.
func AdvanceExamStatus(status model.ExamStatus, startTime, endTime, now time.Time) (model.ExamStatus, bool) {
	switch status {
	case model.ExamStatusDraft, model.ExamStatusScheduled:
		if !now.Before(endTime) {
			return model.ExamStatusCompleted, true
		}
		if !now.Before(startTime) {
			return model.ExamStatusActive, true
		}
	case model.ExamStatusActive:
		if !now.Before(endTime) {
			return model.ExamStatusCompleted, true
		}
	}
	return status, false
}

// RemainingSeconds computes the authoritative time left on a paper. It derives
// from the started-at instant every time, so repeated calls are monotonically
// non-increasing and clamp at zero regardless of what the client reports.
func RemainingSeconds(startedAt time.Time, durationSeconds int, now time.Time) int {
	elapsed := int(now.Sub(startedAt) / time.Second)
	remaining := durationSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
