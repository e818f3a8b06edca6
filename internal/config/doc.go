// Package config loads stockroom's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use $STOCKROOM_CONFIG when set
//  3. Otherwise, use ~/.config/stockroom/config.toml
//  4. If the file doesn't exist, fall back to defaults
//  5. Empty fields keep their defaults
//
// STOCKROOM_API_BASE, when set, wins over api_base from the file.
//
// # Example
//
//	api_base = "https://inventory.example.com/api"
//	session_path = "~/.config/stockroom/session.toml"
//	log_file = "~/.local/state/stockroom/stockroom.log"
//	poll_seconds = 30
//	debug = false
package config
