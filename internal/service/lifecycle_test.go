package service

import (
	"testing"
	"time"

	"github.com/examforge/examforge-backend/internal/model"
)

func TestAdvanceExamStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	cases := []struct {
		name        string
		status      model.ExamStatus
		now         time.Time
		want        model.ExamStatus
		wantChanged bool
	}{
		{"scheduled before window", model.ExamStatusScheduled, start.Add(-time.Minute), model.ExamStatusScheduled, false},
		{"scheduled at start", model.ExamStatusScheduled, start, model.ExamStatusActive, true},
		{"scheduled inside window", model.ExamStatusScheduled, start.Add(time.Hour), model.ExamStatusActive, true},
		{"scheduled at end", model.ExamStatusScheduled, end, model.ExamStatusCompleted, true},
		{"scheduled missed window", model.ExamStatusScheduled, end.Add(time.Minute), model.ExamStatusCompleted, true},
		{"draft before window", model.ExamStatusDraft, start.Add(-time.Minute), model.ExamStatusDraft, false},
		{"draft inside window", model.ExamStatusDraft, start.Add(time.Hour), model.ExamStatusActive, true},
		{"draft missed window", model.ExamStatusDraft, end.Add(time.Hour), model.ExamStatusCompleted, true},
		{"active inside window", model.ExamStatusActive, start.Add(time.Hour), model.ExamStatusActive, false},
		{"active at end", model.ExamStatusActive, end, model.ExamStatusCompleted, true},
		{"active past end", model.ExamStatusActive, end.Add(time.Second), model.ExamStatusCompleted, true},
		{"completed stays", model.ExamStatusCompleted, end.Add(time.Hour), model.ExamStatusCompleted, false},
		{"cancelled stays", model.ExamStatusCancelled, start.Add(time.Hour), model.ExamStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := AdvanceExamStatus(tc.status, start, end, tc.now)
			if got != tc.want || changed != tc.wantChanged {
				t.Errorf("AdvanceExamStatus = (%s, %t), want (%s, %t)", got, changed, tc.want, tc.wantChanged)
			}
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	startedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"just started", 0, 3600},
		{"halfway", 30 * time.Minute, 1800},
		{"exactly expired", time.Hour, 0},
		{"long past", 3 * time.Hour, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingSeconds(startedAt, 3600, startedAt.Add(tc.elapsed))
			if got != tc.want {
				t.Errorf("RemainingSeconds = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRemainingSecondsMonotonic(t *testing.T) {
	startedAt := time.Now()
	prev := RemainingSeconds(startedAt, 600, startedAt)
	for i := 1; i <= 10; i++ {
		cur := RemainingSeconds(startedAt, 600, startedAt.Add(time.Duration(i)*73*time.Second))
		if cur > prev {
			t.Fatalf("remaining time increased: %d -> %d", prev, cur)
		}
		prev = cur
	}
}
