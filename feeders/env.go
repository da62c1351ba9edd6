// Package feeders supplies the config feeders platformd loads settings
// with: files (yaml, toml, json), the process environment, and .env files.
// All of them satisfy the golobby config Feeder contract the platform
// config loader consumes.
package feeders

import "github.com/golobby/config/v3/pkg/feeder"

// Env reads configuration from environment variables.
type Env = feeder.Env

// NewEnv creates an environment variable feeder.
func NewEnv() Env {
	return Env{}
}

// DotEnv reads configuration from a .env file.
type DotEnv = feeder.DotEnv

// NewDotEnv creates a feeder for the .env file at path.
func NewDotEnv(path string) DotEnv {
	return DotEnv{Path: path}
}
