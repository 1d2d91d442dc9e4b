// Package config loads the apiserver configuration from defaults, an
// optional config file, APISERVER_ environment variables and command line
// flags, in increasing order of precedence, and validates the result.
package config
