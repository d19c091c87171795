package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Login UI
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	if s.accessories == nil {
		return
	}

	// Accessories
	s.RegisterRouteHandler("GET "+RouteAccessories, ChainMiddleware(s.ListAccessoriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAccessoriesDiscover, ChainMiddleware(s.DiscoverAccessoriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAccessory, ChainMiddleware(s.GetAccessoryHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCharacteristic, ChainMiddleware(s.GetCharacteristicHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteCharacteristic, ChainMiddleware(s.SetCharacteristicHandler(), s.APIMiddleware()...))
}
