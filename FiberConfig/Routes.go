package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"

	"FireGuard/Controllers"
	"FireGuard/Models"
	"FireGuard/Reports"
	"FireGuard/Slack"
	"FireGuard/Workflow"
	"FireGuard/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, service *Workflow.Service, slack *Slack.SlackClient) {
	// Initialize handlers
	quotationController := Controllers.NewQuotationController(db, service, slack)
	projectController := Controllers.NewProjectController(db, service)
	milestoneController := Controllers.NewMilestoneController(db, service)
	paymentController := Controllers.NewPaymentController(db, service, slack)
	poController := Controllers.NewPurchaseOrderController(db, service)
	notificationController := Controllers.NewNotificationController(db)
	carouselController := Controllers.NewCarouselController(db)
	logController := Controllers.NewActivityLogController(db)
	reportController := Reports.NewReportController(db)

	// API group
	api := app.Group("/api")

	// Auth & users
	api.Post("/login", Controllers.Login)
	api.Post("/logout", Controllers.Logout)
	api.Get("/me", middleware.Verify(0), Controllers.Me)
	api.Post("/RegisterUser", middleware.Verify(Models.PermissionAdmin), Controllers.RegisterUser)
	api.Patch("/UpdateUser", middleware.Verify(Models.PermissionAdmin), Controllers.UpdateUser)
	api.Get("/FetchUsers", middleware.Verify(Models.PermissionAdmin), Controllers.FetchUsers)
	api.Delete("/DeleteUser", middleware.Verify(Models.PermissionAdmin), Controllers.DeleteUser)
	api.Post("/UpdateToken", middleware.Verify(0), Models.UpdateToken)

	// Uploads (quotation attachments etc.)
	api.Post("/uploads", middleware.Verify(0), Controllers.UploadFile)

	// Quotations
	quotations := api.Group("/quotations", middleware.Verify(Models.PermissionClient))
	quotations.Post("/", quotationController.CreateQuotation)
	quotations.Get("/mine", quotationController.GetMyQuotations)
	quotations.Get("/", middleware.Verify(Models.PermissionAccounting), quotationController.GetQuotations)
	quotations.Get("/:id", quotationController.GetQuotation)
	quotations.Patch("/:id/costing", middleware.Verify(Models.PermissionAccounting), quotationController.SubmitCosting)
	quotations.Patch("/:id/approve", middleware.Verify(Models.PermissionAdmin), quotationController.ApproveQuotation)
	quotations.Patch("/:id/reject", middleware.Verify(Models.PermissionAdmin), quotationController.RejectQuotation)

	// Projects & milestones
	projects := api.Group("/projects", middleware.Verify(Models.PermissionClient))
	projects.Get("/mine", projectController.GetMyProjects)
	projects.Get("/", middleware.Verify(Models.PermissionAccounting), projectController.GetProjects)
	projects.Get("/:id", projectController.GetProject)
	projects.Patch("/:id/status", middleware.Verify(Models.PermissionAdmin), projectController.SetProjectStatus)
	projects.Patch("/:id/payment-status", middleware.Verify(Models.PermissionAccounting), projectController.SetPaymentStatus)
	projects.Patch("/:id/balance", middleware.Verify(Models.PermissionAccounting), projectController.UpdateBalance)
	projects.Post("/:id/contract", middleware.Verify(Models.PermissionAccounting), projectController.UploadContract)
	projects.Post("/:id/signed-contract", projectController.UploadSignedContract)

	projects.Get("/:id/milestones", milestoneController.GetProjectMilestones)
	projects.Post("/:id/milestones", middleware.Verify(Models.PermissionAccounting), milestoneController.CreateMilestone)
	projects.Patch("/:id/milestones/:no/status", middleware.Verify(Models.PermissionAccounting), milestoneController.UpdateMilestoneStatus)
	projects.Patch("/:id/milestones/:no/billing", middleware.Verify(Models.PermissionAccounting), milestoneController.UpdateMilestoneBillingStatus)

	// Payments
	payments := api.Group("/payments", middleware.Verify(Models.PermissionClient))
	payments.Post("/", paymentController.SubmitPayment)
	payments.Get("/pending", middleware.Verify(Models.PermissionAccounting), paymentController.GetPendingPayments)
	payments.Patch("/:id/accept", middleware.Verify(Models.PermissionAccounting), paymentController.AcceptPayment)
	payments.Patch("/:id/reject", middleware.Verify(Models.PermissionAccounting), paymentController.RejectPayment)
	projects.Get("/:id/payments", paymentController.GetProjectPayments)

	// Suppliers & purchase orders
	suppliers := api.Group("/suppliers", middleware.Verify(Models.PermissionAccounting))
	suppliers.Get("/", poController.GetSuppliers)
	suppliers.Post("/", poController.CreateSupplier)
	suppliers.Put("/:id", poController.UpdateSupplier)

	purchaseOrders := api.Group("/purchase-orders", middleware.Verify(Models.PermissionAccounting))
	purchaseOrders.Get("/", poController.GetPurchaseOrders)
	purchaseOrders.Post("/", poController.CreatePurchaseOrder)
	purchaseOrders.Get("/:id", poController.GetPurchaseOrder)
	purchaseOrders.Patch("/:id/approve", middleware.Verify(Models.PermissionAdmin), poController.ApprovePurchaseOrder)
	purchaseOrders.Patch("/:id/sent", poController.MarkPurchaseOrderSent)
	purchaseOrders.Post("/:id/payments", poController.RecordPayment)

	// Notifications
	notifications := api.Group("/notifications", middleware.Verify(0))
	notifications.Get("/", notificationController.GetMyNotifications)
	notifications.Patch("/read-all", notificationController.MarkAllRead)
	notifications.Patch("/:id/read", notificationController.MarkRead)

	// Carousel
	api.Get("/carousel", carouselController.GetCarousel)
	carousel := api.Group("/carousel", middleware.Verify(Models.PermissionAdmin))
	carousel.Post("/", carouselController.CreateEntry)
	carousel.Put("/:id", carouselController.UpdateEntry)
	carousel.Delete("/:id", carouselController.DeleteEntry)

	// Activity logs
	api.Get("/logs", middleware.Verify(Models.PermissionAdmin), logController.GetLogs)
	api.Get("/logs/:entity/:id", middleware.Verify(Models.PermissionAdmin), logController.GetEntityLogs)

	// Reports
	reports := api.Group("/reports", middleware.Verify(Models.PermissionAccounting))
	reports.Get("/quotations/:id", reportController.QuotationCostReport)
	reports.Get("/projects/:id", reportController.ProjectBillingReport)
}

func FiberConfig(db *gorm.DB, service *Workflow.Service, slack *Slack.SlackClient) {
	fmt.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	// Html Template engine
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	app.Static("/static", "static/")
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"Title": "FireGuard Portal",
		})
	})

	SetupRoutes(app, db, service, slack)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
