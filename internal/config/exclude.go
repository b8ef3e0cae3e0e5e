package config

// DefaultExcludePaths returns the paths that are never tracked unless the
// config file replaces the list. These are authentication and account
// recovery pages whose visits carry no navigational value and whose query
// strings may hold tokens.
func DefaultExcludePaths() []string {
	return []string{
		// Authentication
		"/login",
		"/logout",
		"/signin",
		"/signout",
		"/register",
		"/auth/**",
		"/oauth/**",

		// Account recovery
		"/password/**",
		"/forgot-password",
		"/reset-password",
		"/verify-email",

		// Framework internals
		"/_nuxt/**",
		"/__webpack_hmr",
	}
}
