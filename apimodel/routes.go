package apimodel

// Backend route paths consumed by the console
const (
	// Auth
	RouteAuthLogin                = "/admin/auth/login"
	RouteAuthRefresh              = "/admin/auth/refresh"
	RouteAuthLogout               = "/admin/auth/logout"
	RouteAuthAcceptInvitation     = "/admin/auth/invitations/accept"
	RouteAuthPasswordResetRequest = "/admin/auth/password-reset/request"
	RouteAuthPasswordResetConfirm = "/admin/auth/password-reset/confirm"

	// Management
	RouteRestaurants = "/admin/restaurants"
)
