// Package config loads and validates application configuration.
//
// Values come, in increasing precedence, from built-in defaults, an optional
// config.yaml, a .env file and TASKLIST_* environment variables (dots in
// keys become underscores, so database.url is TASKLIST_DATABASE_URL). The
// result is validated with go-playground/validator before it is returned.
package config
