// Package config handles repoprism configuration using Viper.
//
// Values are resolved from command-line flags, then REPOPRISM_* environment
// variables, then a YAML or TOML config file, then built-in defaults. The
// config file is read from $XDG_CONFIG_HOME/repoprism/config.{yaml,toml}
// unless an explicit path is given with --config.
package config
