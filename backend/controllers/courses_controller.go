package controllers

import (
	"strings"

	"elcportal/backend/config"
	"elcportal/backend/content"
	"elcportal/backend/models"
	"elcportal/backend/progress"
	"elcportal/backend/session"
	"elcportal/backend/storage"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *progress.Tracker
	Store   storage.ObjectStore
	Log     *utils.Logger
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, tracker *progress.Tracker, store storage.ObjectStore, log *utils.Logger) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Tracker: tracker, Store: store, Log: log}
}

type CourseRequest struct {
	Title            string   `json:"title" validate:"required,min=2,max=200"`
	Slug             string   `json:"slug" validate:"omitempty,max=200"`
	Description      *string  `json:"description"`
	Duration         *string  `json:"duration" validate:"omitempty,max=100"`
	Fee              *float64 `json:"fee" validate:"omitempty,gte=0"`
	ImageURL         *string  `json:"image_url" validate:"omitempty,url"`
	LearningOutcomes []string `json:"learning_outcomes" validate:"omitempty,dive,required"`
	Published        *bool    `json:"published"`
}

// GetCourses lists published courses, newest first. ?limit= caps the list.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	query := cc.DB.WithContext(c.UserContext()).
		Where("published = ?", true).
		Order("created_at DESC")
	if limit := queryInt(c, "limit", 0, 100); limit > 0 {
		query = query.Limit(limit)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

// GetCourseBySlug godoc
// @Summary Course details
// @Description Returns a published course with its lesson outline. Signed-in callers also get their enrollment state.
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{slug} [get]
func (cc *CoursesController) GetCourseBySlug(c *fiber.Ctx) error {
	s := session.From(c)
	db := cc.DB.WithContext(c.UserContext())

	var course models.Course
	if err := db.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}
	if !course.Published && !s.IsAdmin() {
		return utils.NotFound(c, "Course not found")
	}

	type outlineItem struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		SortOrder int       `json:"sort_order"`
	}
	var outline []outlineItem
	if err := db.Model(&models.LessonContent{}).
		Select("id", "title", "sort_order").
		Where("course_id = ?", course.ID).
		Order("sort_order ASC, created_at ASC").
		Scan(&outline).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lessons")
	}

	enrolled := false
	if s.IsAuthenticated() {
		var count int64
		if err := db.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", s.UserID, course.ID).
			Count(&count).Error; err != nil {
			return utils.InternalServerError(c, "Failed to check enrollment")
		}
		enrolled = count > 0
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":   course,
		"lessons":  outline,
		"enrolled": enrolled,
	})
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	s := session.From(c)
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	db := cc.DB.WithContext(c.UserContext())

	var course models.Course
	if err := db.Where("id = ? AND published = ?", courseID, true).First(&course).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	var count int64
	if err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", s.UserID, courseID).
		Count(&count).Error; err != nil {
		return utils.InternalServerError(c, "Failed to check enrollment")
	}
	if count > 0 {
		return utils.Conflict(c, "Already enrolled in this course")
	}

	enrollment := models.Enrollment{
		UserID:   s.UserID,
		CourseID: courseID,
		Status:   models.EnrollmentActive,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Conflict(c, "Already enrolled in this course")
		}
		return utils.InternalServerError(c, "Failed to enroll")
	}

	return utils.Success(c, fiber.StatusCreated, enrollment, utils.WithMessage("Enrolled in "+course.Title))
}

// AdminGetCourses lists every course, drafts included, with lesson and
// enrollment counts.
func (cc *CoursesController) AdminGetCourses(c *fiber.Ctx) error {
	db := cc.DB.WithContext(c.UserContext())

	var courses []models.Course
	if err := db.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}

	type countRow struct {
		CourseID uuid.UUID
		Count    int64
	}
	lessonCounts := map[uuid.UUID]int64{}
	enrollmentCounts := map[uuid.UUID]int64{}
	var rows []countRow
	if err := db.Model(&models.LessonContent{}).
		Select("course_id, COUNT(*) AS count").
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count lessons")
	}
	for _, r := range rows {
		lessonCounts[r.CourseID] = r.Count
	}
	rows = nil
	if err := db.Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS count").
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count enrollments")
	}
	for _, r := range rows {
		enrollmentCounts[r.CourseID] = r.Count
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"course":      course,
			"lessons":     lessonCounts[course.ID],
			"enrollments": enrollmentCounts[course.ID],
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// CreateCourse godoc
// @Summary Create a course
// @Description The slug defaults to one generated from the title and must be unique. New courses are published unless "published" is false.
// @Tags admin
// @Accept json
// @Produce json
// @Param course body CourseRequest true "Course data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CourseRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	course := models.Course{Published: true}
	input.apply(&course)
	if course.Slug == "" {
		return utils.BadRequest(c, "Slug cannot be derived from the title")
	}

	db := cc.DB.WithContext(c.UserContext())
	if taken, err := slugTaken(db, course.Slug, uuid.Nil); err != nil {
		return utils.InternalServerError(c, "Failed to check slug")
	} else if taken {
		return utils.Conflict(c, "Slug is already in use")
	}

	if err := db.Create(&course).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Conflict(c, "Slug is already in use")
		}
		return utils.InternalServerError(c, "Failed to create course")
	}
	return utils.Created(c, course)
}

// UpdateCourse replaces the editable fields of a course.
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input CourseRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	input.apply(&course)
	if course.Slug == "" {
		return utils.BadRequest(c, "Slug cannot be derived from the title")
	}
	if taken, err := slugTaken(db, course.Slug, course.ID); err != nil {
		return utils.InternalServerError(c, "Failed to check slug")
	} else if taken {
		return utils.Conflict(c, "Slug is already in use")
	}

	if err := db.Model(&course).
		Select("title", "slug", "description", "duration", "fee", "image_url", "learning_outcomes", "published").
		Updates(&course).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Conflict(c, "Slug is already in use")
		}
		return utils.InternalServerError(c, "Failed to update course")
	}
	return utils.Success(c, fiber.StatusOK, course)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Removes the course with its lessons, enrollments and completion records, then the uploaded images they referenced
// @Tags admin
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	ctx := c.UserContext()
	var images []string
	err := cc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			return err
		}
		if course.ImageURL != nil {
			images = append(images, *course.ImageURL)
		}
		var bodies []string
		if err := tx.Model(&models.LessonContent{}).Where("course_id = ?", courseID).Pluck("content", &bodies).Error; err != nil {
			return err
		}
		for _, body := range bodies {
			images = append(images, content.ImageURLs(body)...)
		}
		lessons := tx.Model(&models.LessonContent{}).Select("id").Where("course_id = ?", courseID)
		if err := tx.Where("content_id IN (?)", lessons).Delete(&models.LessonCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.LessonContent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to delete course")
	}
	cc.Tracker.ForgetCourse(ctx, courseID)
	removeImages(ctx, cc.Store, cc.Log, courseID, images, nil)
	return utils.NoContent(c)
}

func (in CourseRequest) apply(course *models.Course) {
	course.Title = strings.TrimSpace(in.Title)
	switch slug := utils.GenerateSlug(in.Slug); {
	case slug != "":
		course.Slug = slug
	case course.Slug == "":
		course.Slug = utils.GenerateSlug(course.Title)
	}
	course.Description = optionalString(in.Description)
	course.Duration = optionalString(in.Duration)
	course.Fee = in.Fee
	course.ImageURL = optionalString(in.ImageURL)
	outcomes := make([]string, 0, len(in.LearningOutcomes))
	for _, o := range in.LearningOutcomes {
		if o = strings.TrimSpace(o); o != "" {
			outcomes = append(outcomes, o)
		}
	}
	course.LearningOutcomes = datatypes.JSONSlice[string](outcomes)
	if in.Published != nil {
		course.Published = *in.Published
	}
}

func slugTaken(db *gorm.DB, slug string, except uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Course{}).
		Where("slug = ? AND id <> ?", slug, except).
		Count(&count).Error
	return count > 0, err
}
