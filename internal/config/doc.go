// Package config handles configuration loading for the gigboard client.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every key has a default, so running without a file works
// against a local server.
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path given with the -config flag
//  2. Path from the GIGBOARD_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/gigboard/config.{yaml,yml,toml}
//     (~/.config/gigboard when XDG_CONFIG_HOME is unset)
//
// A .env file in the working directory is loaded first, so its values are
// available for expansion.
//
// # Environment Variable Expansion
//
//	api:
//	  base_url: "${GIGBOARD_API_URL}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	api:
//	  timeout: "15s"
//	ui:
//	  flash_duration: "3s"
//
// # Configuration Sections
//
// API settings:
//
//	api:
//	  base_url: "http://localhost:8080/api"
//	  timeout: "15s"
//	  requests_per_second: 0   # 0 disables client-side throttling
//	  burst: 1
//
// Session storage:
//
//	session:
//	  backend: "file"          # file, sqlite or memory
//	  path: ""                 # defaults under $XDG_DATA_HOME/gigboard
//
// Terminal output:
//
//	ui:
//	  flash_duration: "3s"
//	  color: "auto"            # auto, always or never
//
// Logging (written to stderr):
//
//	logging:
//	  level: "warn"            # debug, info, warn, error
//	  format: "text"           # text or json
//
// The same keys work in TOML:
//
//	[api]
//	base_url = "https://gigs.example.com/api"
//
//	[session]
//	backend = "sqlite"
package config
