// Package config handles loading and validating SQLGuard configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (JWT secret, password hash) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The identifier whitelists are the injection boundary: only tables,
//     columns, and functions listed here can ever appear in SQL text
//
// Performance Characteristics:
//   - Configuration is loaded once at startup; no hot-reload
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Path)
package config
