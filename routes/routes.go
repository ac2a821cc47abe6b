package routes

import (
	"attendly_console/api"
	"attendly_console/attendance"
	"attendly_console/camera"
	"attendly_console/handlers"
	"attendly_console/middleware"
	"attendly_console/models"
	"attendly_console/session"

	"github.com/gin-gonic/gin"
)

// Deps is everything the console pages are built from.
type Deps struct {
	Store         *session.Store
	Auth          *api.AuthAPI
	Passwords     *api.PasswordAPI
	Tasks         *api.TasksAPI
	Notifications *api.NotificationsAPI
	Attendance    *api.AttendanceAPI
	Camera        camera.Device
	Capture       attendance.Options
}

// SetupRoutes configures all the routes for the console. It returns the
// attendance handler so the caller can release the camera on shutdown.
func SetupRoutes(r *gin.Engine, deps Deps) *handlers.AttendanceHandler {
	// Initialize handlers
	attendanceHandler := handlers.NewAttendanceHandler(deps.Attendance, deps.Camera, deps.Capture)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Store, attendanceHandler)
	passwordHandler := handlers.NewPasswordHandler(deps.Passwords)
	healthHandler := handlers.NewHealthHandler(deps.Store)
	dashboardHandler := handlers.NewDashboardHandler(deps.Tasks, deps.Attendance)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Auth)
	employeeHandler := handlers.NewEmployeeHandler(deps.Auth)
	inboxHandler := handlers.NewInboxHandler(deps.Notifications)
	recordsHandler := handlers.NewRecordsHandler(deps.Attendance)

	guard := middleware.NewRouteGuard(deps.Store, deps.Attendance)
	admin := middleware.RequireRole(models.RoleAdmin)
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	r.POST("/login", authHandler.Login)
	r.POST("/signup", authHandler.Signup)
	r.POST("/logout", authHandler.Logout)
	r.POST("/forgot-password", passwordHandler.ForgotPassword)
	r.POST("/reset-password", passwordHandler.ResetPassword)

	// Protected routes
	protected := r.Group("/")
	protected.Use(attendanceHandler.ReleaseOnNavigate(), guard.Protect())
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/change-password", passwordHandler.ChangePassword)

		protected.GET("/dashboard", dashboardHandler.Dashboard)

		// Task routes
		protected.GET("/tasks", managers, taskHandler.ListTasks)
		protected.GET("/tasks/:id", taskHandler.GetTask)
		protected.PUT("/tasks/:id/status", taskHandler.UpdateStatus)
		protected.PUT("/tasks/:id/notes", taskHandler.UpdateNotes)
		protected.DELETE("/tasks/:id", admin, taskHandler.DeleteTask)
		protected.GET("/create-task", taskHandler.AdminOnly, taskHandler.CreateTaskForm)
		protected.POST("/create-task", taskHandler.AdminOnly, taskHandler.CreateTask)
		protected.GET("/my-tasks", taskHandler.MyTasks)
		protected.PUT("/my-tasks/:id/status", taskHandler.UpdateMyTaskStatus)

		// Employee routes
		protected.GET("/employees", managers, employeeHandler.ListEmployees)
		protected.POST("/employees", admin, employeeHandler.AddEmployee)

		// Inbox routes
		protected.GET("/inbox", inboxHandler.Inbox)
		protected.PUT("/inbox/read-all", inboxHandler.MarkAllRead)
		protected.PUT("/inbox/:id/read", inboxHandler.MarkRead)
		protected.DELETE("/inbox/:id", inboxHandler.DeleteNotification)
		protected.POST("/inbox", managers, inboxHandler.CreateNotification)

		// Attendance capture routes
		protected.GET("/attendance", attendanceHandler.Attendance)
		protected.POST("/attendance/checkout", attendanceHandler.StartCheckout)
		protected.POST("/attendance/checkout/cancel", attendanceHandler.CancelCheckout)
		protected.POST("/attendance/capture", attendanceHandler.Capture)
		protected.POST("/attendance/camera", attendanceHandler.RetryCamera)
		protected.POST("/attendance/leave", attendanceHandler.Leave)

		// Face registration routes
		protected.GET("/attendance/register", attendanceHandler.RegisterFace)
		protected.PUT("/attendance/register/target", attendanceHandler.SelectTarget)
		protected.POST("/attendance/register/capture", attendanceHandler.RegisterCapture)
		protected.POST("/attendance/register/camera", attendanceHandler.RegisterRetryCamera)

		// Attendance records routes
		records := protected.Group("/attendance/records", managers)
		records.GET("/summary", recordsHandler.Summary)
		records.GET("/history", recordsHandler.History)
		records.GET("/export", recordsHandler.Export)
		records.POST("/bulk", recordsHandler.BulkCreate)
		records.DELETE("/bulk", recordsHandler.BulkDelete)
	}

	return attendanceHandler
}
