// Package app is the composition root for stockroom.
//
// Setup loads the TOML config, opens the zap file logger and the session
// store, and builds the API client and the resource store on top of them.
// The client is wired with three hooks:
//
//   - the session store supplies and clears the bearer credential
//   - Location reports the screen the UI is on, so authorization failures
//     on the login screen leave the session alone
//   - Expired receives a signal when the server rejects the credential,
//     which the UI turns into a switch to the login screen
//
// Run starts the background poller and the TUI. The poller only refreshes
// while a credential is stored and backs off while every collection is
// failing.
//
// Login, Register, Logout and WhoAmI back the non-interactive CLI commands
// and share the same wiring.
package app
