// Package config loads Flandy's configuration file.
//
// Configuration lives at ~/.config/flandy/config.toml:
//
//	api_base = "http://127.0.0.1:8000/api"
//	poll_seconds = 30
//
// A missing file is not an error: every field has a working default for the
// common single-machine setup. A present but unparsable file is an error so
// a typo never silently sends requests to the wrong backend. Paths may use
// a leading ~ which expands to the user's home directory.
package config
