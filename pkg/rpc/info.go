package rpc

// InfoRouter returns a router named "app" exposing the app metadata as the
// queries name, version and description.
func InfoRouter() *Router {
	return NewRouter("app").
		Query("name", func(info AppInfo) string { return info.Name }).
		Query("version", func(info AppInfo) string { return info.Version }).
		Query("description", func(info AppInfo) string { return info.Description })
}
