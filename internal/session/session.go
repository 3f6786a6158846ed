// Package session manages the single authenticated-identity state of a
// running storefront: login, registration, logout and the loading/error
// status the presentation layer renders from.
package session

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the observable snapshot. Authenticated is true exactly when
// User is set.
type Session struct {
	User          *User  `json:"user,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Status        Status `json:"status"`
	LastError     string `json:"last_error,omitempty"`
}
