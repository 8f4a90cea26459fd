package controllers

import (
	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/progress"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *progress.Tracker
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, tracker *progress.Tracker) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Tracker: tracker}
}

// GetCourseAnalytics godoc
// @Summary Course progress report
// @Description Lists every enrolled student with their completion, plus course averages
// @Tags admin
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	ctx := c.UserContext()
	db := ac.DB.WithContext(ctx)

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Failed to fetch course")
	}

	var enrollments []models.Enrollment
	if err := db.Where("course_id = ?", courseID).Order("created_at ASC").Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch enrollments")
	}

	students := make([]fiber.Map, 0, len(enrollments))
	var percentSum, finished int
	for _, e := range enrollments {
		var user models.User
		if err := db.Select("id", "name", "email").First(&user, "id = ?", e.UserID).Error; err != nil {
			if isNotFound(err) {
				continue
			}
			return utils.InternalServerError(c, "Failed to fetch student")
		}

		summary, err := ac.Tracker.Summary(ctx, e.UserID, courseID)
		if err != nil {
			return utils.InternalServerError(c, "Failed to compute progress")
		}
		percentSum += summary.ProgressPercent
		if summary.TotalCount > 0 && summary.CompletedCount == summary.TotalCount {
			finished++
		}

		students = append(students, fiber.Map{
			"user_id":          user.ID,
			"name":             user.Name,
			"email":            user.Email,
			"enrolled_at":      e.CreatedAt,
			"completed_count":  summary.CompletedCount,
			"total_count":      summary.TotalCount,
			"progress_percent": summary.ProgressPercent,
		})
	}

	average := 0
	if len(students) > 0 {
		average = progress.Percent(percentSum, len(students)*100)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course_id":        course.ID,
		"title":            course.Title,
		"enrolled":         len(students),
		"finished":         finished,
		"average_progress": average,
		"students":         students,
	})
}
