// Package ui is the Bubble Tea terminal interface for stockroom.
//
// # Screens
//
// Without a stored credential the login screen is shown; ctrl+r switches it
// to account registration. Once signed in the main screen has one tab per
// collection (categories, products, sales, purchases), a dashboard with
// counts and totals, and a tail of the application log.
//
// # Data flow
//
// The model never talks HTTP directly. Add, edit, delete and refresh run as
// tea.Cmds against the resource collections in state.Store; the collections
// track loading and error state themselves. The model re-reads a snapshot
// after every collection transition (Store.OnChange wakes it through a
// one-slot channel) and on a one-second tick.
//
// Every tab reports its route through Options.SetLocation. The API client
// uses it to leave the session alone while the login screen is visible.
// When the server rejects the credential elsewhere, the client clears it
// and signals Options.Expired; the model then resets the store and returns
// to the login screen.
//
// # Keys
//
//	0 1 2 3 4 L   dashboard, categories, products, sales, purchases, logs
//	a e d r       add, edit, delete, refresh
//	T o ?         theme, log out, help
//	ctrl+c        quit
//
// Theme, last tab and last username persist in prefs.toml.
package ui
