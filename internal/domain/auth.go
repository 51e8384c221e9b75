package domain

// ============================================================
// Admin auth
// ============================================================

// TokenRequest is the body for POST /v1/auth/token.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse is returned by POST /v1/auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
