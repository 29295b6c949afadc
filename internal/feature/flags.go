// Package feature resolves named boolean feature flags from environment
// configuration. Flags fail closed: an absent or unparsable value is off.
package feature

import (
	"os"
	"strconv"
	"strings"
)

const keyPrefix = "FEATURES_"

var keyReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

// Service answers whether a named feature flag is enabled.
type Service struct {
	lookup func(key string) (string, bool)
}

// NewFromEnv returns a Service backed by the process environment.
func NewFromEnv() *Service {
	return &Service{lookup: os.LookupEnv}
}

// NewWithLookup returns a Service backed by a custom lookup function.
func NewWithLookup(lookup func(key string) (string, bool)) *Service {
	return &Service{lookup: lookup}
}

// Key derives the configuration key for a flag name: "tour-ratings" becomes
// "FEATURES_TOUR_RATINGS".
func Key(name string) string {
	return keyPrefix + strings.ToUpper(keyReplacer.Replace(name))
}

// IsEnabled reports whether the named flag resolves to true. Flags default
// to false when the key is absent or the value is not a valid boolean.
func (s *Service) IsEnabled(name string) bool {
	raw, ok := s.lookup(Key(name))
	if !ok {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return enabled
}
