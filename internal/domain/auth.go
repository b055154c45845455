package domain

import "time"

// TokenPair bundles the tokens issued on login and refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
