package domain

// User is a row of the user table. Read-only from this service's
// perspective; the password column holds a bcrypt hash unless the
// plaintext compatibility mode is active.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
}
