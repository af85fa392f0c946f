// Package app is the composition root of the console.
//
// Run loads configuration, opens the log file, restores the session and
// builds the API client, auth state and collection registry. It then checks
// that the backend answers, prefetches the lookup lists forms pick ids from,
// starts the session expiry watcher and hands everything to the UI.
//
//	┌──────────────┐
//	│    Run()     │
//	└──────┬───────┘
//	       ├─────> config.Load()        read config.toml
//	       ├─────> logging.New()        zap logger to the log file
//	       ├─────> session.Load()       token, profile, preferences
//	       ├─────> Build()              api.Client, state.Auth, state.Store
//	       ├─────> checkBackend()       ping, offline is not fatal
//	       ├─────> Prefetch()           errgroup over lookup collections
//	       ├─────> StartSessionWatcher() expire stale JWTs
//	       └─────> ui.Run()             blocks until quit
//
// Fatal errors are limited to an unreadable config, an unwritable log
// directory and an invalid API URL. Everything after that is reported in
// the UI.
package app
