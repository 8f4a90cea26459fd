package controllers

import (
	"strings"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/navigation"
	"elcportal/backend/session"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// UpdateProfileRequest holds the editable profile fields. Email cannot change.
type UpdateProfileRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=120"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
	CNIC  *string `json:"cnic" validate:"omitempty,max=32"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	s := session.From(c)

	var user models.User
	if err := uc.DB.WithContext(c.UserContext()).First(&user, "id = ?", s.UserID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	payload := userPayload(user)
	payload["created_at"] = user.CreatedAt
	return utils.Success(c, fiber.StatusOK, payload)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates name, phone and CNIC of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	s := session.From(c)

	var input UpdateProfileRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	db := uc.DB.WithContext(c.UserContext())
	var user models.User
	if err := db.First(&user, "id = ?", s.UserID).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Phone = optionalString(input.Phone)
	user.CNIC = optionalString(input.CNIC)

	if err := db.Model(&user).Select("name", "phone", "cnic").Updates(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, userPayload(user), utils.WithMessage("Profile updated"))
}

// GetNavigation returns the navigation links for the caller's role.
func (uc *UserController) GetNavigation(c *fiber.Ctx) error {
	s := session.From(c)
	role := session.Anonymous
	if s.IsAuthenticated() {
		role = s.Role
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"role":  role,
		"links": navigation.For(s),
	})
}
