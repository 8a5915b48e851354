package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/examdesk/exam-seat-allocation/internal/handler"    // import the handlers that implement business logic
	"github.com/examdesk/exam-seat-allocation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (revokes every session) or a
	// refresh_token body (revokes one), so it lives outside the
	// protected group.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "STAFF"))
	auth.GET("/me", a.Me)
}

// RegisterAPI registers the exam-management surface under /v1.  Every
// route requires a valid access token; read endpoints accept both the
// ADMIN and STAFF roles while mutating endpoints additionally demand
// ADMIN.
func RegisterAPI(e *echo.Echo, jwtSecret string,
	admin *handler.AdminHandler,
	uploads *handler.UploadHandler,
	alloc *handler.AllocationHandler,
	export *handler.ExportHandler,
) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "STAFF"))

	adminOnly := middleware.RequireRole("ADMIN")

	// students
	g.GET("/students", admin.ListStudents)
	g.GET("/students/:id", admin.GetStudent)
	g.POST("/students", admin.CreateStudent, adminOnly)
	g.PUT("/students/:id", admin.UpdateStudent, adminOnly)
	g.DELETE("/students/:id", admin.DeleteStudent, adminOnly)
	g.GET("/students/:id/hallticket", export.StudentHallTicket)

	// staff
	g.GET("/staff", admin.ListStaff)
	g.GET("/staff/:id", admin.GetStaff)
	g.POST("/staff", admin.CreateStaff, adminOnly)
	g.PUT("/staff/:id", admin.UpdateStaff, adminOnly)
	g.DELETE("/staff/:id", admin.DeleteStaff, adminOnly)

	// halls
	g.GET("/halls", admin.ListHalls)
	g.GET("/halls/:id", admin.GetHall)
	g.POST("/halls", admin.CreateHall, adminOnly)
	g.PUT("/halls/:id", admin.UpdateHall, adminOnly)
	g.DELETE("/halls/:id", admin.DeleteHall, adminOnly)

	// spreadsheet ingestion
	g.POST("/upload/roster", uploads.UploadRoster, adminOnly)
	g.POST("/upload/halls", uploads.UploadHalls, adminOnly)
	g.GET("/uploads/:id", uploads.GetUpload)

	// allocation and ledger
	g.POST("/allocate", alloc.Allocate, adminOnly)
	g.GET("/slots", alloc.ListSlots)
	g.GET("/slots/:id/seats", alloc.SlotSeats)
	g.GET("/slots/:id/unseated", alloc.SlotUnseated)
	g.GET("/allocations", alloc.ListAllocations)
	g.PUT("/slots/:id/attendance/:student_id", alloc.MarkAttendance, adminOnly)

	// exports
	g.GET("/export/halltickets", export.HallTickets)
	g.GET("/export/attendance", export.AttendanceSheets)

	// dashboard
	g.GET("/stats", admin.Stats)
}
