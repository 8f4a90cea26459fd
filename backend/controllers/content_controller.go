package controllers

import (
	"errors"
	"io"
	"strings"
	"time"

	"elcportal/backend/config"
	"elcportal/backend/content"
	"elcportal/backend/models"
	"elcportal/backend/progress"
	"elcportal/backend/storage"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentController manages course lessons and the images embedded in them.
type ContentController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *progress.Tracker
	Store   storage.ObjectStore
	Log     *utils.Logger
	Now     func() time.Time
}

func NewContentController(db *gorm.DB, cfg *config.Config, tracker *progress.Tracker, store storage.ObjectStore, log *utils.Logger) *ContentController {
	return &ContentController{DB: db, Cfg: cfg, Tracker: tracker, Store: store, Log: log, Now: time.Now}
}

type LessonRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content"`
	SortOrder *int   `json:"sort_order" validate:"omitempty,min=1"`
}

// GetContents lists a course's lessons in display order, including the image
// URLs each body references.
func (cc *ContentController) GetContents(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	db := cc.DB.WithContext(c.UserContext())
	if _, err := cc.findCourse(db, courseID); err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	var lessons []models.LessonContent
	if err := db.Where("course_id = ?", courseID).
		Order("sort_order ASC, created_at ASC").
		Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lessons")
	}

	result := make([]fiber.Map, 0, len(lessons))
	for _, l := range lessons {
		result = append(result, fiber.Map{
			"lesson": l,
			"images": content.ImageURLs(l.Content),
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// CreateContent godoc
// @Summary Add a lesson to a course
// @Description sort_order defaults to one past the current highest
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lesson body LessonRequest true "Lesson data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/contents [post]
func (cc *ContentController) CreateContent(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	var input LessonRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	db := cc.DB.WithContext(ctx)
	if _, err := cc.findCourse(db, courseID); err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	lesson := models.LessonContent{
		CourseID: courseID,
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
	}
	if input.SortOrder != nil {
		lesson.SortOrder = *input.SortOrder
	} else {
		var maxOrder int
		if err := db.Model(&models.LessonContent{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return utils.InternalServerError(c, "Failed to compute sort order")
		}
		lesson.SortOrder = maxOrder + 1
	}

	if err := db.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Failed to create lesson")
	}
	cc.Tracker.InvalidateCourse(ctx, courseID)
	return utils.Created(c, lesson)
}

// UpdateContent replaces a lesson's title and body. sort_order is kept
// unless given.
func (cc *ContentController) UpdateContent(c *fiber.Ctx) error {
	lessonID, ok := paramUUID(c, "contentId")
	if !ok {
		return utils.BadRequest(c, "Invalid content ID")
	}
	var input LessonRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	ctx := c.UserContext()
	db := cc.DB.WithContext(ctx)
	var lesson models.LessonContent
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Failed to fetch lesson")
	}

	lesson.Title = strings.TrimSpace(input.Title)
	lesson.Content = input.Content
	if input.SortOrder != nil {
		lesson.SortOrder = *input.SortOrder
	}
	if err := db.Model(&lesson).Select("title", "content", "sort_order").Updates(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Failed to update lesson")
	}
	cc.Tracker.InvalidateCourse(ctx, lesson.CourseID)
	return utils.Success(c, fiber.StatusOK, lesson)
}

// DeleteContent godoc
// @Summary Delete a lesson
// @Description Removes the lesson, every learner's completion record for it and the uploaded images only it referenced
// @Tags admin
// @Param contentId path string true "Content ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/contents/{contentId} [delete]
func (cc *ContentController) DeleteContent(c *fiber.Ctx) error {
	lessonID, ok := paramUUID(c, "contentId")
	if !ok {
		return utils.BadRequest(c, "Invalid content ID")
	}

	ctx := c.UserContext()
	var (
		lesson models.LessonContent
		keep   []string
	)
	err := cc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lesson, "id = ?", lessonID).Error; err != nil {
			return err
		}
		if err := tx.Where("content_id = ?", lessonID).Delete(&models.LessonCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&lesson).Error; err != nil {
			return err
		}
		var bodies []string
		if err := tx.Model(&models.LessonContent{}).Where("course_id = ?", lesson.CourseID).Pluck("content", &bodies).Error; err != nil {
			return err
		}
		for _, body := range bodies {
			keep = append(keep, content.ImageURLs(body)...)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Failed to delete lesson")
	}
	cc.Tracker.InvalidateCourse(ctx, lesson.CourseID)
	removeImages(ctx, cc.Store, cc.Log, lesson.CourseID, content.ImageURLs(lesson.Content), keep)
	return utils.NoContent(c)
}

// UploadImage godoc
// @Summary Upload a lesson image
// @Description Stores the image and returns its public URL with the marker to paste into a lesson body
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param file formData file true "Image file"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 413 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/images [post]
func (cc *ContentController) UploadImage(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	ctx := c.UserContext()
	if _, err := cc.findCourse(cc.DB.WithContext(ctx), courseID); err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "Missing file field")
	}
	if cc.Cfg.UploadMaxBytes > 0 && fh.Size > int64(cc.Cfg.UploadMaxBytes) {
		return utils.NewAppError(fiber.StatusRequestEntityTooLarge, "Image is too large", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return utils.BadRequest(c, "Cannot read file")
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return utils.BadRequest(c, "Cannot read file")
	}

	data, contentType, err := storage.PrepareImage(raw, cc.Cfg.ImageMaxWidth)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return utils.BadRequest(c, "File is not a supported image")
		}
		return utils.InternalServerError(c, "Failed to process image")
	}

	objectPath := storage.LessonImagePath(courseID, fh.Filename, cc.Now())
	url, err := cc.Store.Upload(ctx, objectPath, contentType, data)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return utils.NewAppError(fiber.StatusServiceUnavailable, "Image storage is not configured", err)
		}
		cc.Log.Error("lesson image upload failed", "course_id", courseID, "path", objectPath, "error", err)
		return utils.NewAppError(fiber.StatusBadGateway, "Image upload failed", err)
	}

	return utils.Created(c, fiber.Map{
		"url":    url,
		"path":   objectPath,
		"marker": "\n" + content.Marker(url) + "\n",
	})
}

func (cc *ContentController) findCourse(db *gorm.DB, courseID uuid.UUID) (models.Course, error) {
	var course models.Course
	err := db.Select("id").First(&course, "id = ?", courseID).Error
	return course, err
}
