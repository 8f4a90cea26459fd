package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
		{0, 5, 0},
		{1, 8, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestAggregateWithoutLessons(t *testing.T) {
	s := Aggregate(nil, []Record{{LessonID: uuid.New(), Completed: true}})
	assert.Equal(t, 0, s.TotalCount)
	assert.Equal(t, 0, s.CompletedCount)
	assert.Equal(t, 0, s.ProgressPercent)
	assert.NotNil(t, s.CompletedLessons)
}

func TestAggregateCourseScenario(t *testing.T) {
	l1, l2, l3 := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	records := []Record{
		{LessonID: l1, Completed: true, CompletedAt: &now},
		{LessonID: l2, Completed: false},
	}

	s := Aggregate([]uuid.UUID{l1, l2, l3}, records)

	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 33, s.ProgressPercent)
	assert.True(t, s.IsCompleted(l1))
	assert.False(t, s.IsCompleted(l2), "record with completed=false")
	assert.False(t, s.IsCompleted(l3), "no record")
	assert.False(t, s.IsCompleted(uuid.New()), "lesson outside the course")
}

func TestAggregateIgnoresForeignAndDuplicateRecords(t *testing.T) {
	l1, l2 := uuid.New(), uuid.New()
	records := []Record{
		{LessonID: l1, Completed: true},
		{LessonID: l1, Completed: true},
		{LessonID: uuid.New(), Completed: true},
	}

	s := Aggregate([]uuid.UUID{l1, l2}, records)

	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 50, s.ProgressPercent)
	assert.Equal(t, []uuid.UUID{l1}, s.CompletedLessons)
}

func TestAggregateKeepsLessonOrder(t *testing.T) {
	l1, l2, l3 := uuid.New(), uuid.New(), uuid.New()
	records := []Record{
		{LessonID: l3, Completed: true},
		{LessonID: l1, Completed: true},
	}

	s := Aggregate([]uuid.UUID{l1, l2, l3}, records)

	assert.Equal(t, []uuid.UUID{l1, l3}, s.CompletedLessons)
	assert.Equal(t, 67, s.ProgressPercent)
}
