// Package config loads loanform's configuration.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults (see Default)
//  2. a YAML file, loanform.yaml, found in the working directory or the
//     user configuration directory, or named explicitly with --config
//  3. LOANFORM_* environment variables, optionally seeded from a .env file
//
// Command line flags are applied on top by the cmd package.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/loanform/loanform.yaml or $HOME/.config/loanform/loanform.yaml
//   - macOS: $HOME/.config/loanform/loanform.yaml
//   - Windows: %LOCALAPPDATA%\loanform\loanform.yaml
//
// # Example
//
//	predict:
//	  endpoint: https://watery-cheslie-solutyics-efc6f698.koyeb.app/predict
//	  timeout: 30s
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	  allowed_origins: ["https://loans.example.com"]
//	  advertise: true
//	cache:
//	  redis_addr: localhost:6379
//	  ttl: 10m
//	log:
//	  level: info
//
// Environment keys replace dots with underscores:
//
//	LOANFORM_PREDICT_TIMEOUT=5s LOANFORM_SERVER_PORT=9000 loanform serve
package config
