package progress

import (
	"context"
	"testing"
	"time"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBName:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := utils.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, orders ...int) (models.Course, []models.LessonContent) {
	t.Helper()
	course := models.Course{Title: "Spoken English", Slug: "spoken-english-" + uuid.NewString()[:8], Published: true}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]models.LessonContent, 0, len(orders))
	for i, order := range orders {
		l := models.LessonContent{
			CourseID:  course.ID,
			Title:     "Lesson " + string(rune('A'+i)),
			SortOrder: order,
		}
		require.NoError(t, db.Create(&l).Error)
		lessons = append(lessons, l)
	}
	return course, lessons
}

func TestGormStoreLessonOrder(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 3, 1, 2)
	store := NewGormStore(db)

	ids, err := store.LessonIDs(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{lessons[1].ID, lessons[2].ID, lessons[0].ID}, ids)
}

func TestGormStoreRecords(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 1, 2)
	store := NewGormStore(db)
	ctx := context.Background()
	learner := uuid.New()

	rec, err := store.Record(ctx, learner, lessons[0].ID)
	require.NoError(t, err)
	assert.Nil(t, rec, "no record yet")

	now := time.Now().UTC()
	require.NoError(t, store.SaveRecord(ctx, learner, Record{LessonID: lessons[0].ID, Completed: true, CompletedAt: &now}))
	require.NoError(t, store.SaveRecord(ctx, learner, Record{LessonID: lessons[0].ID, Completed: false}))

	var count int64
	require.NoError(t, db.Model(&models.LessonCompletion{}).Where("user_id = ?", learner).Count(&count).Error)
	assert.Equal(t, int64(1), count, "saving twice updates the same row")

	rec, err = store.Record(ctx, learner, lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Nil(t, rec.CompletedAt)

	ids, err := store.LessonIDs(ctx, course.ID)
	require.NoError(t, err)
	records, err := store.Records(ctx, learner, ids)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	courseID, err := store.CourseOfLesson(ctx, lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, courseID)

	_, err = store.CourseOfLesson(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestTrackerOnGormStore(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 1, 2, 3)
	tr := NewTracker(NewGormStore(db))
	ctx := context.Background()
	learner := uuid.New()

	_, err := tr.Toggle(ctx, learner, lessons[0].ID)
	require.NoError(t, err)
	_, err = tr.Set(ctx, learner, lessons[1].ID, false)
	require.NoError(t, err)

	s, err := tr.Summary(ctx, learner, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 33, s.ProgressPercent)
	assert.True(t, s.IsCompleted(lessons[0].ID))
	assert.False(t, s.IsCompleted(lessons[1].ID))
	assert.False(t, s.IsCompleted(lessons[2].ID))

	empty, _ := seedCourse(t, db)
	s, err = tr.Summary(ctx, learner, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.ProgressPercent)
	assert.Equal(t, 0, s.TotalCount)
}
