// Package config loads the gameflow configuration.
//
// Settings are resolved in increasing priority:
//
//  1. Builtin defaults (Default)
//  2. The config file, TOML or YAML by extension
//  3. A .env file, loaded into the process environment
//  4. GAMEFLOW_* environment variables
//
// Command-line flags are applied last by the caller.
package config
