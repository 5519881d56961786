// Package logger builds log/slog loggers with the module's conventions:
// JSON at INFO by default, text for development, plus small attribute
// helpers (Error, Component, Username) used across the authentication
// packages.
package logger
