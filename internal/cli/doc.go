// Package cli turns command-line arguments into the application's internal
// configuration. It owns flag parsing, the merge with the optional TOML
// config file, and process-level concerns like usage output and exit codes.
package cli
