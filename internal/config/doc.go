// Package config handles YAML configuration loading with environment variable
// substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation; a .env file loaded by the binary feeds the same mechanism.
package config
