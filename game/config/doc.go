// Package config provides scenario configuration management for the Quest
// Engine backend.
//
// Scenarios are JSON files in a configurable directory, each describing a
// room graph, starting conditions, and message templates. The Manager loads
// and caches them, validates on load, and always exposes a built-in default
// scenario so the server works with no scenario directory at all.
package config
