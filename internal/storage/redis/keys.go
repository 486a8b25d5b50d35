package redis

import "fmt"

// Key prefix for all credential data
const keyPrefix = "quizctl"

// accessTokenKey returns the Redis key for the access token
func accessTokenKey(namespace string) string {
	return fmt.Sprintf("%s:%s:cred:access_token", keyPrefix, namespace)
}

// refreshTokenKey returns the Redis key for the refresh token
func refreshTokenKey(namespace string) string {
	return fmt.Sprintf("%s:%s:cred:refresh_token", keyPrefix, namespace)
}

// userKey returns the Redis key for the serialized user record
func userKey(namespace string) string {
	return fmt.Sprintf("%s:%s:cred:user", keyPrefix, namespace)
}
