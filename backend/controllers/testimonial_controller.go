package controllers

import (
	"strings"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TestimonialController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTestimonialController(db *gorm.DB, cfg *config.Config) *TestimonialController {
	return &TestimonialController{DB: db, Cfg: cfg}
}

type TestimonialRequest struct {
	StudentName string `json:"student_name" validate:"required,min=2,max=120"`
	Message     string `json:"message" validate:"required,min=5,max=2000"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Published   *bool  `json:"published"`
}

// GetTestimonials returns the newest published testimonials (?limit=, default 6).
func (tc *TestimonialController) GetTestimonials(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 6, 50)

	var testimonials []models.Testimonial
	if err := tc.DB.WithContext(c.UserContext()).
		Where("published = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&testimonials).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch testimonials")
	}
	return utils.Success(c, fiber.StatusOK, testimonials)
}

func (tc *TestimonialController) AdminGetTestimonials(c *fiber.Ctx) error {
	page, limit, offset := paging(c)
	db := tc.DB.WithContext(c.UserContext())

	var total int64
	if err := db.Model(&models.Testimonial{}).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count testimonials")
	}
	var testimonials []models.Testimonial
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&testimonials).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch testimonials")
	}
	return utils.Paginate(c, testimonials, total, page, limit)
}

// CreateTestimonial godoc
// @Summary Create a testimonial
// @Tags admin
// @Accept json
// @Produce json
// @Param testimonial body TestimonialRequest true "Testimonial"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/testimonials [post]
func (tc *TestimonialController) CreateTestimonial(c *fiber.Ctx) error {
	var input TestimonialRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	testimonial := models.Testimonial{Published: true}
	input.apply(&testimonial)
	if err := tc.DB.WithContext(c.UserContext()).Create(&testimonial).Error; err != nil {
		return utils.InternalServerError(c, "Failed to create testimonial")
	}
	return utils.Created(c, testimonial)
}

func (tc *TestimonialController) UpdateTestimonial(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid testimonial ID")
	}
	var input TestimonialRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	db := tc.DB.WithContext(c.UserContext())
	var testimonial models.Testimonial
	if err := db.First(&testimonial, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Testimonial not found")
		}
		return utils.InternalServerError(c, "Failed to fetch testimonial")
	}

	input.apply(&testimonial)
	if err := db.Model(&testimonial).
		Select("student_name", "message", "rating", "published").
		Updates(&testimonial).Error; err != nil {
		return utils.InternalServerError(c, "Failed to update testimonial")
	}
	return utils.Success(c, fiber.StatusOK, testimonial)
}

func (tc *TestimonialController) DeleteTestimonial(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid testimonial ID")
	}
	res := tc.DB.WithContext(c.UserContext()).Delete(&models.Testimonial{}, "id = ?", id)
	if res.Error != nil {
		return utils.InternalServerError(c, "Failed to delete testimonial")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Testimonial not found")
	}
	return utils.NoContent(c)
}

func (in TestimonialRequest) apply(t *models.Testimonial) {
	t.StudentName = strings.TrimSpace(in.StudentName)
	t.Message = strings.TrimSpace(in.Message)
	t.Rating = in.Rating
	if in.Published != nil {
		t.Published = *in.Published
	}
}
