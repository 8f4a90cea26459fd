package controllers

import (
	"strings"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OverviewController backs the admin dashboard and student management.
type OverviewController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewOverviewController(db *gorm.DB, cfg *config.Config) *OverviewController {
	return &OverviewController{DB: db, Cfg: cfg}
}

// GetStats godoc
// @Summary Admin dashboard statistics
// @Description Counts of students, courses and enrollments, and the five newest students
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/stats [get]
func (oc *OverviewController) GetStats(c *fiber.Ctx) error {
	db := oc.DB.WithContext(c.UserContext())

	var students, courses, published, enrollments, contacts int64
	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.User{}).Where("role = ?", models.RoleStudent), &students},
		{db.Model(&models.Course{}), &courses},
		{db.Model(&models.Course{}).Where("published = ?", true), &published},
		{db.Model(&models.Enrollment{}), &enrollments},
		{db.Model(&models.Contact{}), &contacts},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dest).Error; err != nil {
			return utils.InternalServerError(c, "Failed to compute statistics")
		}
	}

	var recent []models.User
	if err := db.Where("role = ?", models.RoleStudent).
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch recent students")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"total_students":    students,
		"total_courses":     courses,
		"published_courses": published,
		"total_enrollments": enrollments,
		"total_contacts":    contacts,
		"recent_students":   recent,
	})
}

// ListStudents returns students page by page. ?search= matches name or email.
func (oc *OverviewController) ListStudents(c *fiber.Ctx) error {
	page, limit, offset := paging(c)
	db := oc.DB.WithContext(c.UserContext())

	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("role = ?", models.RoleStudent)
		if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
			like := likePattern(search)
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like)
		}
		return q
	}

	var total int64
	if err := filter(db.Model(&models.User{})).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count students")
	}

	var students []models.User
	if err := filter(db.Model(&models.User{})).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&students).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch students")
	}

	type enrollmentCount struct {
		UserID uuid.UUID
		Count  int64
	}
	ids := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	perStudent := map[uuid.UUID]int64{}
	if len(ids) > 0 {
		var rows []enrollmentCount
		if err := db.Model(&models.Enrollment{}).
			Select("user_id, COUNT(*) AS count").
			Where("user_id IN ?", ids).
			Group("user_id").
			Scan(&rows).Error; err != nil {
			return utils.InternalServerError(c, "Failed to count enrollments")
		}
		for _, r := range rows {
			perStudent[r.UserID] = r.Count
		}
	}

	result := make([]fiber.Map, 0, len(students))
	for _, s := range students {
		payload := userPayload(s)
		payload["created_at"] = s.CreatedAt
		payload["enrollments"] = perStudent[s.ID]
		result = append(result, payload)
	}
	return utils.Paginate(c, result, total, page, limit)
}

// DeleteStudent godoc
// @Summary Delete a student
// @Description Removes the student account with its enrollments and completion records
// @Tags admin
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/students/{id} [delete]
func (oc *OverviewController) DeleteStudent(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid user ID")
	}

	err := oc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND role = ?", id, models.RoleStudent).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.LessonCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Student not found")
		}
		return utils.InternalServerError(c, "Failed to delete student")
	}
	return utils.NoContent(c)
}
