// Package session keeps the client's credentials between runs: the access
// token, the refresh token and the company the user logged in for.
package session

// TokenPair is an access token together with the refresh token issued with it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Store is the credential store handed to the API client. Implementations
// must update both tokens of a pair together or not at all.
type Store interface {
	AccessToken() string
	RefreshToken() string
	Company() string
	SetTokens(TokenPair) error
	SetCompany(string) error
	Clear() error
}

type state struct {
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Company      string `json:"company,omitempty"`
}
