package domain

// LoginRequest exchanges a social provider's authorization code for
// app tokens.
type LoginRequest struct {
	Provider string `json:"provider" binding:"required,oneof=GOOGLE KAKAO"`
	Code     string `json:"code" binding:"required"`
}

// RefreshRequest rotates an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginResponse carries tokens plus the member so the client knows
// whether profile setup is still needed.
type LoginResponse struct {
	AccessToken      string         `json:"accessToken"`
	RefreshToken     string         `json:"refreshToken"`
	AccessExpiresAt  int64          `json:"accessExpiresAt"`
	RefreshExpiresAt int64          `json:"refreshExpiresAt"`
	Member           MemberResponse `json:"member"`
}

// TokenResponse is the refresh reply.
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	AccessExpiresAt  int64  `json:"accessExpiresAt"`
	RefreshExpiresAt int64  `json:"refreshExpiresAt"`
}
