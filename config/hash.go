package config

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// Hash computes a stable content digest of the normalized tree. Two
// YAML documents that differ only in map-key order hash identically;
// reordering a test or group list changes the digest, since list
// order is significant for scheduling.
func (c *Config) Hash() (string, error) {
	digest, err := hashstructure.Hash(c, nil)
	if err != nil {
		return "", fmt.Errorf("failed to hash config: %w", err)
	}
	return fmt.Sprintf("%016x", digest), nil
}
