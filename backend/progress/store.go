package progress

import (
	"context"
	"errors"

	"elcportal/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore keeps completion records in the content_progress table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) LessonIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.LessonContent{}).
		Where("course_id = ?", courseID).
		Order("sort_order ASC, created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) Records(ctx context.Context, learnerID uuid.UUID, lessonIDs []uuid.UUID) ([]Record, error) {
	var rows []models.LessonCompletion
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND content_id IN ?", learnerID, lessonIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, toRecord(r))
	}
	return records, nil
}

func (s *GormStore) Record(ctx context.Context, learnerID, lessonID uuid.UUID) (*Record, error) {
	var row models.LessonCompletion
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", learnerID, lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := toRecord(row)
	return &rec, nil
}

func (s *GormStore) SaveRecord(ctx context.Context, learnerID uuid.UUID, rec Record) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.LessonCompletion
		err := tx.Where("user_id = ? AND content_id = ?", learnerID, rec.LessonID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.LessonCompletion{
				UserID:      learnerID,
				ContentID:   rec.LessonID,
				Completed:   rec.Completed,
				CompletedAt: rec.CompletedAt,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&row).Updates(map[string]interface{}{
			"completed":    rec.Completed,
			"completed_at": rec.CompletedAt,
		}).Error
	})
}

func (s *GormStore) CourseOfLesson(ctx context.Context, lessonID uuid.UUID) (uuid.UUID, error) {
	var lesson models.LessonContent
	err := s.DB.WithContext(ctx).Select("id", "course_id").First(&lesson, "id = ?", lessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrLessonNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return lesson.CourseID, nil
}

func toRecord(r models.LessonCompletion) Record {
	return Record{LessonID: r.ContentID, Completed: r.Completed, CompletedAt: r.CompletedAt}
}
