package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session routes used by the login UI
	RouteSession = "/session"
	RouteLogout  = "/logout"
	RouteLogin   = "/login"

	// Accessory routes
	RouteAccessories         = "/accessories"
	RouteAccessoriesDiscover = "/accessories/discover"
	RouteAccessory           = "/accessories/{id}"
	RouteCharacteristic      = "/accessories/{id}/characteristics/{name}"

	RouteHealth = "/healthz"
)
