// Package config loads, normalizes, and validates episodekit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EPISODEKIT_TASK_ROOT and the standard AWS credential variables. This is the
// only package that reads the process environment; everything downstream
// receives explicit values.
package config
