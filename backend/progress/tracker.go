package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"elcportal/backend/cache"
	"elcportal/backend/utils"

	"github.com/google/uuid"
)

var ErrLessonNotFound = errors.New("lesson not found")

// Store is the persistence the Tracker reads and writes.
type Store interface {
	// LessonIDs returns the course's lessons in display order.
	LessonIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	Records(ctx context.Context, learnerID uuid.UUID, lessonIDs []uuid.UUID) ([]Record, error)
	// Record returns nil, nil when the learner has no record for the lesson.
	Record(ctx context.Context, learnerID, lessonID uuid.UUID) (*Record, error)
	// SaveRecord updates the (learner, lesson) record or creates it.
	SaveRecord(ctx context.Context, learnerID uuid.UUID, rec Record) error
	// CourseOfLesson returns ErrLessonNotFound for unknown lessons.
	CourseOfLesson(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error)
}

// Tracker computes summaries and is the only writer of completion records.
// Store failures are returned to the caller; nothing is retried.
//
// A cached summary lives under a key that embeds the version of the course's
// lesson set and the version of the learner's records. Writers bump a version
// rather than delete the entry, so a summary computed before a write can only
// be stored under a key that is never read again.
type Tracker struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
	log   *utils.Logger
	now   func() time.Time
}

type Option func(*Tracker)

// WithCache enables read-through caching of summaries.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(t *Tracker) {
		t.cache = c
		t.ttl = ttl
	}
}

func WithLogger(l *utils.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		cache: cache.Nop{},
		log:   utils.NopLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Summary(ctx context.Context, learnerID, courseID uuid.UUID) (Summary, error) {
	key, cacheable := t.summaryKey(ctx, learnerID, courseID)
	if cacheable {
		if s, ok := t.cached(ctx, key); ok {
			return s, nil
		}
	}

	lessonIDs, err := t.store.LessonIDs(ctx, courseID)
	if err != nil {
		return Summary{}, fmt.Errorf("load lessons: %w", err)
	}
	var records []Record
	if len(lessonIDs) > 0 {
		records, err = t.store.Records(ctx, learnerID, lessonIDs)
		if err != nil {
			return Summary{}, fmt.Errorf("load progress: %w", err)
		}
	}

	s := Aggregate(lessonIDs, records)
	if cacheable {
		if b, err := json.Marshal(s); err == nil {
			if err := t.cache.Set(ctx, key, b, t.ttl); err != nil {
				t.log.Warn("progress cache set failed", "key", key, "error", err)
			}
		}
	}
	return s, nil
}

// Invalidate retires the cached summary of a learner's course.
func (t *Tracker) Invalidate(ctx context.Context, learnerID, courseID uuid.UUID) {
	t.bump(ctx, cache.LearnerVersionKey(learnerID, courseID))
}

// InvalidateCourse retires every learner's cached summary of a course. Call
// it after lessons are added, removed or reordered.
func (t *Tracker) InvalidateCourse(ctx context.Context, courseID uuid.UUID) {
	t.bump(ctx, cache.CourseVersionKey(courseID))
}

func (t *Tracker) summaryKey(ctx context.Context, learnerID, courseID uuid.UUID) (string, bool) {
	courseVer, ok := t.version(ctx, cache.CourseVersionKey(courseID))
	if !ok {
		return "", false
	}
	learnerVer, ok := t.version(ctx, cache.LearnerVersionKey(learnerID, courseID))
	if !ok {
		return "", false
	}
	return cache.ProgressKey(learnerID, courseID) + ":" + courseVer + ":" + learnerVer, true
}

// version reads a version key; an absent key is version "0". It reports
// false when the cache cannot be read.
func (t *Tracker) version(ctx context.Context, key string) (string, bool) {
	b, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.log.Warn("progress cache get failed", "key", key, "error", err)
		return "", false
	}
	if !ok {
		return "0", true
	}
	return string(b), true
}

// ForgetCourse drops the course's version key once the course is deleted.
func (t *Tracker) ForgetCourse(ctx context.Context, courseID uuid.UUID) {
	key := cache.CourseVersionKey(courseID)
	if err := t.cache.Delete(ctx, key); err != nil {
		t.log.Warn("progress cache delete failed", "key", key, "error", err)
	}
}

// bump stores a fresh version. Versions outlive every summary stored under
// them, so an expired version can only fall back to "0" once no "0" entry
// remains.
func (t *Tracker) bump(ctx context.Context, key string) {
	if err := t.cache.Set(ctx, key, []byte(uuid.NewString()), 2*t.ttl); err != nil {
		t.log.Warn("progress cache invalidation failed", "key", key, "error", err)
	}
}

func (t *Tracker) cached(ctx context.Context, key string) (Summary, bool) {
	b, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.log.Warn("progress cache get failed", "key", key, "error", err)
		return Summary{}, false
	}
	if !ok {
		return Summary{}, false
	}
	var s Summary
	if err := json.Unmarshal(b, &s); err != nil {
		t.log.Warn("progress cache entry unreadable", "key", key, "error", err)
		return Summary{}, false
	}
	return s, true
}

// Toggle flips the learner's completion of a lesson. A lesson without a
// record becomes completed.
func (t *Tracker) Toggle(ctx context.Context, learnerID, lessonID uuid.UUID) (Record, error) {
	return t.write(ctx, learnerID, lessonID, func(existing *Record) bool {
		return existing == nil || !existing.Completed
	})
}

// Set records an explicit completion state for a lesson.
func (t *Tracker) Set(ctx context.Context, learnerID, lessonID uuid.UUID, completed bool) (Record, error) {
	return t.write(ctx, learnerID, lessonID, func(*Record) bool { return completed })
}

func (t *Tracker) write(ctx context.Context, learnerID, lessonID uuid.UUID, next func(*Record) bool) (Record, error) {
	courseID, err := t.store.CourseOfLesson(ctx, lessonID)
	if err != nil {
		return Record{}, err
	}
	existing, err := t.store.Record(ctx, learnerID, lessonID)
	if err != nil {
		return Record{}, fmt.Errorf("load progress: %w", err)
	}

	rec := Record{LessonID: lessonID, Completed: next(existing)}
	switch {
	case rec.Completed && existing != nil && existing.Completed && existing.CompletedAt != nil:
		rec.CompletedAt = existing.CompletedAt
	case rec.Completed:
		now := t.now().UTC()
		rec.CompletedAt = &now
	}
	if err := t.store.SaveRecord(ctx, learnerID, rec); err != nil {
		return Record{}, fmt.Errorf("save progress: %w", err)
	}

	t.Invalidate(ctx, learnerID, courseID)
	return rec, nil
}
