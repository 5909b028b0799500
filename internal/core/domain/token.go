package domain

// TokenType discriminates access tokens from refresh tokens. A token is only
// accepted where its own type is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// BearerScheme is the token_type reported to clients.
const BearerScheme = "bearer"

// TokenPair is issued on login and on refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
