package cache

import "strings"

const (
	GlobalKeyPrefix = "videoquiz"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// TranscriptKey is the key of a cached transcript, by SHA-256 of the video URL.
func TranscriptKey(urlHash string) string {
	return GenerateCacheKey("pipeline", "transcript", urlHash)
}

// RevokedTokenKey marks a revoked JWT by its jti.
func RevokedTokenKey(jti string) string {
	return GenerateCacheKey("auth", "revoked", jti)
}
