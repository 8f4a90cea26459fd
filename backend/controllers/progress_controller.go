package controllers

import (
	"context"
	"errors"

	"elcportal/backend/config"
	"elcportal/backend/content"
	"elcportal/backend/models"
	"elcportal/backend/progress"
	"elcportal/backend/session"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *progress.Tracker
}

func NewProgressController(db *gorm.DB, cfg *config.Config, tracker *progress.Tracker) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Tracker: tracker}
}

type lessonView struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	SortOrder int               `json:"sort_order"`
	Segments  []content.Segment `json:"segments"`
	Completed bool              `json:"completed"`
}

type SetCompletionRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// canLearn reports whether the session may read a course's lessons and
// record progress in it.
func (pc *ProgressController) canLearn(ctx context.Context, s session.Session, courseID uuid.UUID) (bool, error) {
	if s.IsAdmin() {
		return true, nil
	}
	var count int64
	err := pc.DB.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", s.UserID, courseID).
		Count(&count).Error
	return count > 0, err
}

// GetLearnView godoc
// @Summary Course learning view
// @Description Returns the course lessons rendered into text and image segments, with the caller's completion state
// @Tags learning
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learn/{courseId} [get]
func (pc *ProgressController) GetLearnView(c *fiber.Ctx) error {
	s := session.From(c)
	courseID, ok := paramUUID(c, "courseId")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	ctx := c.UserContext()
	db := pc.DB.WithContext(ctx)

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	allowed, err := pc.canLearn(ctx, s, courseID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to check enrollment")
	}
	if !allowed {
		return utils.Forbidden(c, "You are not enrolled in this course")
	}

	var lessons []models.LessonContent
	if err := db.Where("course_id = ?", courseID).
		Order("sort_order ASC, created_at ASC").
		Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lessons")
	}

	summary, err := pc.Tracker.Summary(ctx, s.UserID, courseID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to compute progress")
	}

	views := make([]lessonView, 0, len(lessons))
	for _, l := range lessons {
		views = append(views, lessonView{
			ID:        l.ID,
			Title:     l.Title,
			SortOrder: l.SortOrder,
			Segments:  content.Segments(l.Content),
			Completed: summary.IsCompleted(l.ID),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":   course,
		"lessons":  views,
		"progress": summary,
	})
}

// ToggleLesson flips the caller's completion of a lesson and returns the
// updated course summary.
func (pc *ProgressController) ToggleLesson(c *fiber.Ctx) error {
	return pc.writeLesson(c, func(ctx context.Context, learnerID, lessonID uuid.UUID) (progress.Record, error) {
		return pc.Tracker.Toggle(ctx, learnerID, lessonID)
	})
}

// SetLessonCompletion godoc
// @Summary Set lesson completion
// @Tags learning
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param input body SetCompletionRequest true "Completion state"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learn/lessons/{lessonId}/complete [put]
func (pc *ProgressController) SetLessonCompletion(c *fiber.Ctx) error {
	var input SetCompletionRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	return pc.writeLesson(c, func(ctx context.Context, learnerID, lessonID uuid.UUID) (progress.Record, error) {
		return pc.Tracker.Set(ctx, learnerID, lessonID, *input.Completed)
	})
}

func (pc *ProgressController) writeLesson(c *fiber.Ctx, write func(context.Context, uuid.UUID, uuid.UUID) (progress.Record, error)) error {
	s := session.From(c)
	lessonID, ok := paramUUID(c, "lessonId")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}
	ctx := c.UserContext()

	var lesson models.LessonContent
	if err := pc.DB.WithContext(ctx).Select("id", "course_id").First(&lesson, "id = ?", lessonID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Failed to fetch lesson")
	}

	allowed, err := pc.canLearn(ctx, s, lesson.CourseID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to check enrollment")
	}
	if !allowed {
		return utils.Forbidden(c, "You are not enrolled in this course")
	}

	rec, err := write(ctx, s.UserID, lessonID)
	if err != nil {
		if errors.Is(err, progress.ErrLessonNotFound) {
			return utils.NewAppError(fiber.StatusNotFound, "Lesson not found", err)
		}
		return utils.NewAppError(fiber.StatusInternalServerError, "Failed to update progress", err)
	}

	summary, err := pc.Tracker.Summary(ctx, s.UserID, lesson.CourseID)
	if err != nil {
		return utils.NewAppError(fiber.StatusInternalServerError, "Failed to compute progress", err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson":   rec,
		"progress": summary,
	})
}

// GetDashboard godoc
// @Summary Student dashboard
// @Description Returns the caller's enrolled courses with progress, and the latest announcements
// @Tags learning
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (pc *ProgressController) GetDashboard(c *fiber.Ctx) error {
	s := session.From(c)
	ctx := c.UserContext()
	db := pc.DB.WithContext(ctx)

	var enrollments []models.Enrollment
	if err := db.Preload("Course").
		Where("user_id = ?", s.UserID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch enrollments")
	}

	courses := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		summary, err := pc.Tracker.Summary(ctx, s.UserID, e.CourseID)
		if err != nil {
			return utils.InternalServerError(c, "Failed to compute progress")
		}
		courses = append(courses, fiber.Map{
			"enrollment_id": e.ID,
			"status":        e.Status,
			"enrolled_at":   e.CreatedAt,
			"course":        e.Course,
			"progress":      summary,
		})
	}

	var announcements []models.Announcement
	if err := db.Order("created_at DESC").Limit(5).Find(&announcements).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch announcements")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"courses":       courses,
		"announcements": announcements,
	})
}
