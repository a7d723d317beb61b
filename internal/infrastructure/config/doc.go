// Package config handles loading and validating the generator configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading a .env file from the working directory
//   - Overriding with LOVELACE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// The strategy options themselves (areas, card_options, views, ...) are not
// part of this file; they live in the file named by strategy.options_file and
// are merged by package options.
//
// Security Considerations:
//   - The Home Assistant long-lived token should be set via LOVELACE_HOMEASSISTANT_TOKEN
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.HomeAssistant.URL)
package config
