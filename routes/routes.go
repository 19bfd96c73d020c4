package routes

import (
	"net/http"

	"entrada/access"
	"entrada/admin"
	"entrada/events"
	"entrada/middleware"
	"entrada/phonepe"
	"entrada/ratelim"
	"entrada/register"
	"entrada/scan"
	"entrada/tickets"

	"github.com/julienschmidt/httprouter"
)

// Deps bundles the constructed handler objects the routes need.
type Deps struct {
	Admin  *admin.Handler
	Reg    *register.Handler
	Access *access.Handler
	Pay    *phonepe.Bridge
	Hub    *scan.Hub
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/eventpic/*filepath", http.Dir("static/eventpic"))
}

func AddAdminRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/admin/register", rl.Limit(d.Admin.Register))
	router.POST("/api/admin/login", rl.Limit(d.Admin.Login))
	router.POST("/api/admin/forgot-password", rl.Limit(d.Admin.ForgotPassword))
	router.POST("/api/admin/reset-password", rl.Limit(d.Admin.ResetPassword))
	router.POST("/api/admin/logout", middleware.Authenticate(d.Admin.Logout))

	router.GET("/api/admin/users", middleware.Authenticate(register.ListAttendees))
	router.GET("/api/admin/claim-summary", middleware.Authenticate(register.ClaimSummary))
	router.POST("/api/admin/manage-access", middleware.Authenticate(d.Access.Assign))
}

func AddEventsRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/events/create-event", middleware.Authenticate(events.CreateEvent))
	router.GET("/api/events", middleware.Authenticate(events.GetEvents))
	router.GET("/api/events/:eventid", events.GetEvent)
	router.PUT("/api/events/:eventid", middleware.Authenticate(events.UpdateEvent))
	router.POST("/api/events/:eventid/fields", middleware.Authenticate(events.SaveRegistrationFields))
}

func AddRegisterRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/users/register", rl.Limit(d.Reg.RegisterAttendee))
}

func AddScanRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/scan/verify", rl.Limit(middleware.AuthenticateStaff(scan.Verify)))
	router.POST("/api/scan/claim", rl.Limit(middleware.AuthenticateStaff(scan.Claim)))
	router.GET("/ws/scanfeed/:eventid", scan.FeedHandler(d.Hub))
}

func AddAccessRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/privilege/login", rl.Limit(d.Access.StaffLogin))
}

func AddPayRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.POST("/api/phonepe/initiate-payment", rl.Limit(d.Pay.InitiatePayment))
	router.POST("/api/phonepe/verify-payment", d.Pay.VerifyPayment)
}

func AddTicketRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	router.GET("/api/tickets/:eventid/qr", rl.Limit(tickets.TicketQR))
	router.GET("/api/tickets/:eventid/pdf", rl.Limit(tickets.PrintTicket))
}

func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter, d Deps) {
	AddStaticRoutes(router)
	AddAdminRoutes(router, rl, d)
	AddEventsRoutes(router, rl, d)
	AddRegisterRoutes(router, rl, d)
	AddScanRoutes(router, rl, d)
	AddAccessRoutes(router, rl, d)
	AddPayRoutes(router, rl, d)
	AddTicketRoutes(router, rl, d)
}
