package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/escola/internal/app/controllers"
	"github.com/yigit/escola/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	static http.FileSystem,
	healthController *controllers.HealthController,
	authController *controllers.AuthController,
	dashboardController *controllers.DashboardController,
	studentController *controllers.StudentController,
	petController *controllers.PetController,
	reportController *controllers.ReportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", healthController.Health)
	router.StaticFS("/static", static)

	// --- Public auth routes ---
	guest := router.Group("/auth")
	guest.Use(authMiddleware.GuestOnly())
	{
		guest.GET("/login", authController.ShowLogin)
		guest.POST("/login", authController.Login)
		guest.GET("/register", authController.ShowRegister)
		guest.POST("/register", authController.Register)
	}

	// --- Authenticated routes ---
	authenticated := router.Group("")
	authenticated.Use(authMiddleware.LoginRequired())
	{
		authenticated.GET("/auth/logout", authController.Logout)
		authenticated.GET("/auth/password", authController.ShowChangePassword)
		authenticated.POST("/auth/password", authController.ChangePassword)

		authenticated.GET("/", dashboardController.Index)
		authenticated.GET("/dashboard", dashboardController.Index)

		students := authenticated.Group("/students")
		{
			students.GET("", studentController.Index)
			students.GET("/new", studentController.New)
			students.POST("/new", studentController.Create)
			students.GET("/export.json", studentController.Export)
			students.GET("/:id", studentController.Show)
			students.GET("/:id/edit", studentController.Edit)
			students.POST("/:id/edit", studentController.Update)
			students.POST("/:id/delete", studentController.Delete)
			students.GET("/:id/photo", studentController.Photo)
		}

		pets := authenticated.Group("/pets")
		{
			pets.GET("", petController.Index)
			pets.GET("/new", petController.New)
			pets.POST("/new", petController.Create)
			pets.GET("/export.json", petController.Export)
			pets.GET("/by-owner/:studentId", petController.ByOwner)
			pets.GET("/:id/edit", petController.Edit)
			pets.POST("/:id/edit", petController.Update)
			pets.POST("/:id/delete", petController.Delete)
		}

		reports := authenticated.Group("/reports")
		{
			reports.GET("", reportController.Index)
			reports.GET("/students.pdf", reportController.StudentsPDF)
			reports.GET("/statistics", reportController.Statistics)
			reports.GET("/master-detail", reportController.MasterDetail)
		}
	}

	router.NoRoute(dashboardController.NotFound)
}
