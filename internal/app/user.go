package app

import (
	"sync"

	"github.com/Amund211/cheevo/internal/api"
)

type UserState int

const (
	UserLoggedOut UserState = iota
	UserLoggingIn
	UserLoggedIn
)

func (s UserState) String() string {
	switch s {
	case UserLoggedOut:
		return "LoggedOut"
	case UserLoggingIn:
		return "LoggingIn"
	case UserLoggedIn:
		return "LoggedIn"
	}
	return "Unknown"
}

// UserContext is the currently authenticated user.
//
// Every login attempt and every logout starts a new epoch. Request completions carry the epoch
// they were started in and are ignored once it is no longer current.
type UserContext struct {
	mu sync.Mutex

	state         UserState
	epoch         uint64
	username      string
	displayName   string
	apiToken      string
	score         uint32
	softcoreScore uint32
}

func NewUserContext() *UserContext {
	return &UserContext{}
}

func (u *UserContext) State() UserState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *UserContext) IsLoggedIn() bool {
	return u.State() == UserLoggedIn
}

func (u *UserContext) Username() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.username
}

func (u *UserContext) DisplayName() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.displayName
}

func (u *UserContext) Score() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.score
}

func (u *UserContext) SoftcoreScore() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.softcoreScore
}

// Credentials returns the credentials of the logged in user and the current epoch
func (u *UserContext) Credentials() (api.Credentials, uint64, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != UserLoggedIn {
		return api.Credentials{}, u.epoch, false
	}
	return api.Credentials{Username: u.username, APIToken: u.apiToken}, u.epoch, true
}

// IsCurrent reports whether epoch is still the current epoch
func (u *UserContext) IsCurrent(epoch uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.epoch == epoch
}

func (u *UserContext) beginLogin() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.epoch++
	u.state = UserLoggingIn
	return u.epoch
}

func (u *UserContext) completeLogin(epoch uint64, response api.LoginResponse) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.epoch != epoch {
		return false
	}

	u.state = UserLoggedIn
	u.username = response.Username
	u.displayName = response.DisplayName
	if u.displayName == "" {
		u.displayName = response.Username
	}
	u.apiToken = response.APIToken
	u.score = response.Score
	u.softcoreScore = response.SoftcoreScore
	return true
}

func (u *UserContext) failLogin(epoch uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.epoch != epoch {
		return
	}
	u.state = UserLoggedOut
}

func (u *UserContext) logout() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.epoch++
	u.state = UserLoggedOut
	u.username = ""
	u.displayName = ""
	u.apiToken = ""
	u.score = 0
	u.softcoreScore = 0
}

// SetScore updates the score from a completion started in epoch
func (u *UserContext) SetScore(epoch uint64, score uint32, hardcore bool) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.epoch != epoch || u.state != UserLoggedIn {
		return false
	}
	if hardcore {
		u.score = score
	} else {
		u.softcoreScore = score
	}
	return true
}
