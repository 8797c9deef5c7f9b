package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Dashboard Routes
	RouteIndex        = "/{$}"
	RouteClients      = "/clients"
	RouteClientsNew   = "/clients/new"
	RouteProducts     = "/products"
	RouteCredits      = "/credits"
	RouteCreditsNew   = "/credits/new"
	RouteCreditDetail = "/credits/{id}"
	RoutePayment      = "/credits/{id}/payments/{paymentID}"

	// API Routes
	RouteAPISession = "/api/session"
	RouteMetrics    = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
