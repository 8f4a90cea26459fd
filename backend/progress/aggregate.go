// Package progress computes and records a learner's lesson completion.
package progress

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Record is a learner's completion state for one lesson.
type Record struct {
	LessonID    uuid.UUID  `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type Summary struct {
	CompletedCount   int         `json:"completed_count"`
	TotalCount       int         `json:"total_count"`
	ProgressPercent  int         `json:"progress_percent"`
	CompletedLessons []uuid.UUID `json:"completed_lessons"`
}

// Aggregate derives the completion summary of a course's lessons from a
// learner's records. Records for lessons outside lessonIDs are ignored, and
// a lesson counts once however many completed records it has.
func Aggregate(lessonIDs []uuid.UUID, records []Record) Summary {
	done := make(map[uuid.UUID]bool, len(records))
	for _, r := range records {
		if r.Completed {
			done[r.LessonID] = true
		}
	}

	s := Summary{TotalCount: len(lessonIDs), CompletedLessons: []uuid.UUID{}}
	seen := make(map[uuid.UUID]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		if done[id] && !seen[id] {
			s.CompletedLessons = append(s.CompletedLessons, id)
		}
		seen[id] = true
	}
	s.CompletedCount = len(s.CompletedLessons)
	s.ProgressPercent = Percent(s.CompletedCount, s.TotalCount)
	return s
}

// Percent is round(completed/total*100), or 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// IsCompleted reports whether lessonID has a completed record. A lesson with
// no record is not completed.
func (s Summary) IsCompleted(lessonID uuid.UUID) bool {
	return slices.Contains(s.CompletedLessons, lessonID)
}
