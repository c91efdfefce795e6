// Package storage abstracts the durable key/value profile store that lets a
// session survive restarts.
package storage

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("key not found")

// Store is a durable string key/value store. The session manager is the sole
// writer of the "token" and "user" keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

// Unquote strips one pair of incidental leading/trailing quote characters.
// Tokens written by older clients were JSON-stringified before storage; every
// Store applies this on the read path so no consumer has to repeat it.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
