package progress

import (
	"context"
	"testing"
	"time"

	"elcportal/backend/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedis(mr.Addr())
	require.NoError(t, err)
	defer rc.Close()

	store := newMemStore()
	course, learner := uuid.New(), uuid.New()
	l1, l2 := uuid.New(), uuid.New()
	store.lessons[course] = []uuid.UUID{l1, l2}
	tr := NewTracker(store, WithCache(rc, time.Minute))
	ctx := context.Background()

	s, err := tr.Summary(ctx, learner, course)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CompletedCount)
	assert.True(t, mr.Exists(cache.ProgressKey(learner, course)+":0:0"))
	assert.Equal(t, time.Minute, mr.TTL(cache.ProgressKey(learner, course)+":0:0"))

	_, err = tr.Summary(ctx, learner, course)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads)

	_, err = tr.Toggle(ctx, learner, l1)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.LearnerVersionKey(learner, course)))
	assert.Equal(t, 2*time.Minute, mr.TTL(cache.LearnerVersionKey(learner, course)))

	s, err = tr.Summary(ctx, learner, course)
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads)
	assert.Equal(t, 50, s.ProgressPercent)
	assert.True(t, s.IsCompleted(l1))

	tr.InvalidateCourse(ctx, course)
	s, err = tr.Summary(ctx, learner, course)
	require.NoError(t, err)
	assert.Equal(t, 3, store.reads)
	assert.Equal(t, 50, s.ProgressPercent)

	tr.ForgetCourse(ctx, course)
	assert.False(t, mr.Exists(cache.CourseVersionKey(course)))
}

func TestSummaryWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedis(mr.Addr())
	require.NoError(t, err)
	defer rc.Close()

	store := newMemStore()
	course, learner, lesson := uuid.New(), uuid.New(), uuid.New()
	store.lessons[course] = []uuid.UUID{lesson}
	tr := NewTracker(store, WithCache(rc, time.Minute))
	ctx := context.Background()

	mr.Close()
	_, err = tr.Toggle(ctx, learner, lesson)
	require.NoError(t, err, "cache failures never fail a write")
	s, err := tr.Summary(ctx, learner, course)
	require.NoError(t, err)
	assert.Equal(t, 100, s.ProgressPercent)
}
