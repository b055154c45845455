package dto

// TokenResponse is the OAuth2-compatible body returned on login and refresh.
// The refresh token travels in the refresh-token cookie, not in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ResetPasswordRequest payload for POST /reset-password/.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MsgResponse is a bare message body.
type MsgResponse struct {
	Msg string `json:"msg"`
}
