// Package config provides 12-factor configuration for the diffcalc demo.
//
// Configuration is loaded from environment variables with sensible
// defaults.
//
// Configuration Sections:
//   - Engine: derivative shape (free parameters, derivation order)
//   - Sample: evaluation grid for the demo functions
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("order %d over %d parameters\n", cfg.Engine.Order, cfg.Engine.Parameters)
package config
