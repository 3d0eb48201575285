package ports

// TokenIssuer creates and verifies signed session tokens. Verify checks the
// signature and registered claims only; whether the token is still an active
// session is decided against the credential store.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (userID string, err error)
}
