// Package config provides the configuration of HotelLens: the flat
// Config struct filled from CLI flags and environment variables, and the
// optional .hotellens YAML file with per-provider site settings.
package config
