// Package env reads raw environment variables in the few places that run
// before the envconfig structs are loaded, such as logger construction.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
