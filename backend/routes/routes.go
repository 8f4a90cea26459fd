package routes

import (
	"elcportal/backend/config"
	"elcportal/backend/controllers"
	"elcportal/backend/middleware"
	"elcportal/backend/progress"
	"elcportal/backend/storage"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the shared services handlers are built from.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Log     *utils.Logger
	Tracker *progress.Tracker
	Store   storage.ObjectStore
}

func SetupRoutes(app *fiber.App, d Deps) {
	db, cfg := d.DB, d.Cfg

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return utils.NewAppError(fiber.StatusServiceUnavailable, "database unavailable", err)
		}
		return c.SendString("ok")
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg, db)
	optionalAuth := middleware.OptionalAuth(cfg, db)
	adminMiddleware := middleware.AdminMiddleware()

	api := app.Group("/api")

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	api.Get("/navigation", optionalAuth, userController.GetNavigation)
	api.Get("/user/profile", authMiddleware, userController.GetProfile)
	api.Put("/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, d.Tracker, d.Store, d.Log)
	api.Get("/courses", coursesController.GetCourses)
	api.Get("/courses/:slug", optionalAuth, coursesController.GetCourseBySlug)
	api.Post("/courses/:id/enroll", authMiddleware, coursesController.Enroll)

	// Learning routes
	progressController := controllers.NewProgressController(db, cfg, d.Tracker)
	api.Get("/dashboard", authMiddleware, progressController.GetDashboard)
	learn := api.Group("/learn", authMiddleware)
	learn.Get("/:courseId", progressController.GetLearnView)
	learn.Post("/lessons/:lessonId/toggle", progressController.ToggleLesson)
	learn.Put("/lessons/:lessonId/complete", progressController.SetLessonCompletion)

	// Site routes
	testimonialController := controllers.NewTestimonialController(db, cfg)
	siteController := controllers.NewSiteController(db, cfg)
	api.Get("/testimonials", testimonialController.GetTestimonials)
	api.Get("/announcements", siteController.GetAnnouncements)
	api.Post("/contacts", siteController.SubmitContact)

	// Admin routes
	admin := api.Group("/admin", authMiddleware, adminMiddleware)

	contentController := controllers.NewContentController(db, cfg, d.Tracker, d.Store, d.Log)
	analyticsController := controllers.NewAnalyticsController(db, cfg, d.Tracker)
	admin.Get("/courses", coursesController.AdminGetCourses)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Delete("/courses/:id", coursesController.DeleteCourse)
	admin.Get("/courses/:id/analytics", analyticsController.GetCourseAnalytics)
	admin.Get("/courses/:id/contents", contentController.GetContents)
	admin.Post("/courses/:id/contents", contentController.CreateContent)
	admin.Post("/courses/:id/images", contentController.UploadImage)
	admin.Put("/contents/:contentId", contentController.UpdateContent)
	admin.Delete("/contents/:contentId", contentController.DeleteContent)

	admin.Get("/testimonials", testimonialController.AdminGetTestimonials)
	admin.Post("/testimonials", testimonialController.CreateTestimonial)
	admin.Put("/testimonials/:id", testimonialController.UpdateTestimonial)
	admin.Delete("/testimonials/:id", testimonialController.DeleteTestimonial)

	admin.Get("/announcements", siteController.AdminGetAnnouncements)
	admin.Post("/announcements", siteController.CreateAnnouncement)
	admin.Put("/announcements/:id", siteController.UpdateAnnouncement)
	admin.Delete("/announcements/:id", siteController.DeleteAnnouncement)

	admin.Get("/contacts", siteController.AdminGetContacts)
	admin.Delete("/contacts/:id", siteController.DeleteContact)

	overviewController := controllers.NewOverviewController(db, cfg)
	admin.Get("/stats", overviewController.GetStats)
	admin.Get("/students", overviewController.ListStudents)
	admin.Delete("/students/:id", overviewController.DeleteStudent)
}
