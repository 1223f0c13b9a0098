package auth

// User is the identity resolved from a bearer token by the auth provider.
type User struct {
	ID    string
	Email string
}

// Claims are the fields extracted from a locally inspected JWT.
type Claims struct {
	UserID string
	Email  string
}
