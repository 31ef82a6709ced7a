package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session (single device).
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// PaperStartKey returns the cache key for a paper's started_at timestamp.
// Cached so timer recomputation can skip a DB round-trip on hot paths.
func (r *CacheKeyStruct) PaperStartKey(paperID string) string {
	return fmt.Sprintf("paper:%s:started_at", paperID)
}

var CacheKey = NewCacheKeyStruct()
