// Package config loads the application configuration from a JSON file
// with environment-variable overrides (prefix UPTOP_), and manages the
// user's persisted view preferences.
//
// Configuration is operator-owned and read once at startup; preferences
// are user-owned, merged over defaults on load so older preference files
// pick up new fields, and written atomically on save.
package config
