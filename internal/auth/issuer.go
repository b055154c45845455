package auth

import (
	"errors"
	"time"

	"github.com/spec-kit/queue-info-api/internal/domain"
)

// TokenIssuer applies per-kind TTL policy on top of the codec. Access tokens
// are short-lived; refresh tokens outlive them so a pair can be rotated
// before the session dies.
type TokenIssuer struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer. refreshTTL must exceed accessTTL.
func NewTokenIssuer(codec *TokenCodec, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if codec == nil {
		return nil, errors.New("token codec is required")
	}
	if refreshTTL <= accessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	return &TokenIssuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// IssueAccessToken signs a short-lived access token for the subject.
func (i *TokenIssuer) IssueAccessToken(subject int64) (string, time.Time, error) {
	return i.codec.Encode(subject, TokenKindAccess, i.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the subject.
func (i *TokenIssuer) IssueRefreshToken(subject int64) (string, time.Time, error) {
	return i.codec.Encode(subject, TokenKindRefresh, i.refreshTTL)
}

// IssuePair issues both tokens for the subject. Used on login and on refresh
// rotation.
func (i *TokenIssuer) IssuePair(subject int64) (domain.TokenPair, error) {
	access, accessExp, err := i.IssueAccessToken(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, _, err := i.IssueRefreshToken(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExp,
	}, nil
}
