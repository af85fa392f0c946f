// Package config loads the busadmin console configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/busadmin/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API URL: http://127.0.0.1:8000/api/v1
//   - Request timeout: 15 seconds
//   - Locale: en
//   - Page size hint: 15
//   - Log file: ~/.local/state/busadmin/busadmin.log
//   - Auth groups: admin = bearer, cms = raw
//
// # TOML Format
//
//	api_url = "https://api.example.af/v1"
//	request_timeout = 15
//	locale = "en"
//	per_page = 15
//
//	[auth]
//	default_scheme = "bearer"
//
//	[auth.groups]
//	cms = "raw"
//
//	[log]
//	path = "~/.local/state/busadmin/busadmin.log"
//	level = "info"
//
// # Authorization Schemes
//
// The backend does not agree with itself on the Authorization header. Some
// route prefixes expect "Bearer <token>", others the bare token. Each endpoint
// in the api package names a group; SchemeFor maps the group to "bearer" or
// "raw". Groups not listed fall back to auth.default_scheme. Unknown scheme
// names are a parse error rather than a silent default, since the server
// rejects a wrong header with a 401 that is hard to diagnose.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and unknown auth schemes. A missing file
// is not an error.
package config
