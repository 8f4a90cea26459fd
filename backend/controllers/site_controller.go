package controllers

import (
	"strings"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SiteController serves announcements and the contact form.
type SiteController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSiteController(db *gorm.DB, cfg *config.Config) *SiteController {
	return &SiteController{DB: db, Cfg: cfg}
}

type AnnouncementRequest struct {
	Title   string `json:"title" validate:"required,min=2,max=200"`
	Content string `json:"content" validate:"required"`
}

type ContactRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Email   string  `json:"email" validate:"required,email"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message string  `json:"message" validate:"required,min=5,max=5000"`
}

// GetAnnouncements returns the newest announcements (?limit=, default 5).
func (sc *SiteController) GetAnnouncements(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 5, 50)

	var announcements []models.Announcement
	if err := sc.DB.WithContext(c.UserContext()).
		Order("created_at DESC").
		Limit(limit).
		Find(&announcements).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch announcements")
	}
	return utils.Success(c, fiber.StatusOK, announcements)
}

func (sc *SiteController) AdminGetAnnouncements(c *fiber.Ctx) error {
	page, limit, offset := paging(c)
	db := sc.DB.WithContext(c.UserContext())

	var total int64
	if err := db.Model(&models.Announcement{}).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count announcements")
	}
	var announcements []models.Announcement
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&announcements).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch announcements")
	}
	return utils.Paginate(c, announcements, total, page, limit)
}

func (sc *SiteController) CreateAnnouncement(c *fiber.Ctx) error {
	var input AnnouncementRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	announcement := models.Announcement{
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
	}
	if err := sc.DB.WithContext(c.UserContext()).Create(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Failed to create announcement")
	}
	return utils.Created(c, announcement)
}

func (sc *SiteController) UpdateAnnouncement(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid announcement ID")
	}
	var input AnnouncementRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	db := sc.DB.WithContext(c.UserContext())
	var announcement models.Announcement
	if err := db.First(&announcement, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Failed to fetch announcement")
	}

	announcement.Title = strings.TrimSpace(input.Title)
	announcement.Content = input.Content
	if err := db.Model(&announcement).Select("title", "content").Updates(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Failed to update announcement")
	}
	return utils.Success(c, fiber.StatusOK, announcement)
}

func (sc *SiteController) DeleteAnnouncement(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid announcement ID")
	}
	res := sc.DB.WithContext(c.UserContext()).Delete(&models.Announcement{}, "id = ?", id)
	if res.Error != nil {
		return utils.InternalServerError(c, "Failed to delete announcement")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Announcement not found")
	}
	return utils.NoContent(c)
}

// SubmitContact godoc
// @Summary Submit the contact form
// @Tags site
// @Accept json
// @Produce json
// @Param contact body ContactRequest true "Contact message"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /contacts [post]
func (sc *SiteController) SubmitContact(c *fiber.Ctx) error {
	var input ContactRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	contact := models.Contact{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Subject: optionalString(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if err := sc.DB.WithContext(c.UserContext()).Create(&contact).Error; err != nil {
		return utils.InternalServerError(c, "Failed to save message")
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"id": contact.ID}, utils.WithMessage("Thank you, we will get back to you soon"))
}

func (sc *SiteController) AdminGetContacts(c *fiber.Ctx) error {
	page, limit, offset := paging(c)
	db := sc.DB.WithContext(c.UserContext())

	var total int64
	if err := db.Model(&models.Contact{}).Count(&total).Error; err != nil {
		return utils.InternalServerError(c, "Failed to count messages")
	}
	var contacts []models.Contact
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&contacts).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch messages")
	}
	return utils.Paginate(c, contacts, total, page, limit)
}

func (sc *SiteController) DeleteContact(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid contact ID")
	}
	res := sc.DB.WithContext(c.UserContext()).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return utils.InternalServerError(c, "Failed to delete message")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Message not found")
	}
	return utils.NoContent(c)
}
