package redis

import (
	"fmt"
	"strings"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "staticsite"

const (
	segmentObject     = ":object:"
	segmentAllObjects = ":objects:all"
)

// ObjectKey returns the Redis key of an object's hash.
func ObjectKey(prefix, name string) string {
	return prefix + segmentObject + name
}

// AllObjectsKey returns the key of the set indexing every object name.
func AllObjectsKey(prefix string) string {
	return prefix + segmentAllObjects
}

// ExtractObjectName extracts the object name from a Redis key.
func ExtractObjectName(prefix, key string) (string, error) {
	p := prefix + segmentObject
	if !strings.HasPrefix(key, p) || len(key) == len(p) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return key[len(p):], nil
}
