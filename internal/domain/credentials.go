package domain

// Password is a secret that does not print itself
type Password string

const maskedPassword = "***"

// String masks the password so it never ends up in logs
func (p Password) String() string { return maskedPassword }

// GoString masks the password in %#v output
func (p Password) GoString() string { return maskedPassword }

// Reveal returns the actual password
func (p Password) Reveal() string { return string(p) }

// Credentials authenticate against a device's management API
type Credentials struct {
	Username string   `json:"username" yaml:"username"`
	Password Password `json:"password" yaml:"password"`
}

// IsZero reports whether no username or password is set
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}
