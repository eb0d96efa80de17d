// Package config loads and validates the Locust configuration from YAML,
// with environment variable expansion and duration-string parsing.
package config
