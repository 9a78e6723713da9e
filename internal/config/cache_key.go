package config

import "fmt"

// CacheKeyStruct namespaces all Redis key builders.
type CacheKeyStruct struct{}

// CacheKey is the shared key-builder instance.
var CacheKey = &CacheKeyStruct{}

// AdminSessionKey returns the cache key for the admin's last issued token id.
func (r *CacheKeyStruct) AdminSessionKey(adminID int64) string {
	return fmt.Sprintf("admin:%d:session", adminID)
}

// SessionStartKey returns the cache key for a quiz session's start time (Unix).
func (r *CacheKeyStruct) SessionStartKey(sessionID int64) string {
	return fmt.Sprintf("session:%d:started_at", sessionID)
}

// SessionAnswersKey returns the cache key for a quiz session's answer hash
// (question id -> latest answer text).
func (r *CacheKeyStruct) SessionAnswersKey(sessionID int64) string {
	return fmt.Sprintf("session:%d:answers", sessionID)
}
