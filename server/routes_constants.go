package server

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Auth Routes - Password Management
	RouteForgotPassword = "/auth/forgot-password"
	RouteResetPassword  = "/auth/reset-password"

	// Auth Routes - Invitations
	RouteInvitation = "/auth/invitation"

	// Console Routes (gated)
	RouteDashboard   = "/dashboard"
	RouteRestaurants = "/restaurants"

	// API Routes
	RouteAPISession = "/api/session"
	RouteHealth     = "/healthz"
	RouteMetrics    = "/metrics"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file}"
)
