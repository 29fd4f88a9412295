// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env struct tags.
// MONGO_URI is the only required variable; everything else has a default.
package config
