// Package config defines the application configuration structure and the
// loading logic that populates it from environment variables and an
// optional config file. Environment variables take precedence over file
// values; both are validated before the application starts.
package config
