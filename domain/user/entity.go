package user

// User is a registered account. The password hash never leaves the users
// module.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Revision string `json:"revision,omitempty"`
}

// Claims are the identity facts carried by an access token.
type Claims struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
