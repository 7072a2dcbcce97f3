package session

import "crypto/subtle"

// State is the position of a session in the login state machine
type State string

const (
	StateLoggedOut      State = "logged_out"
	StateLoggedOutError State = "logged_out_error"
	StateLoggedIn       State = "logged_in"
)

// Gate holds the login flags of one session. The zero value is logged out.
type Gate struct {
	Authenticated bool
	LoginFailed   bool
}

// Submit compares attempt with credential byte for byte. A match logs the
// session in and clears the failure flag; a mismatch sets the failure flag and
// leaves Authenticated untouched.
func (g *Gate) Submit(attempt, credential string) State {
	if credential != "" && subtle.ConstantTimeCompare([]byte(attempt), []byte(credential)) == 1 {
		g.Authenticated = true
		g.LoginFailed = false
	} else {
		g.LoginFailed = true
	}
	return g.State()
}

// Logout clears both flags
func (g *Gate) Logout() State {
	g.Authenticated = false
	g.LoginFailed = false
	return g.State()
}

// State derives the state machine position from the flags
func (g Gate) State() State {
	switch {
	case g.Authenticated:
		return StateLoggedIn
	case g.LoginFailed:
		return StateLoggedOutError
	default:
		return StateLoggedOut
	}
}
