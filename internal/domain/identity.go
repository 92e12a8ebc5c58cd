package domain

import "time"

// Identity is the caller as resolved by the authentication layer.
type Identity struct {
	SubjectID       string
	IsAuthenticated bool
	IsStaff         bool
	IsProvider      bool
}

// SystemIdentity is used for transitions the service applies on its own, such as auto-release.
var SystemIdentity = Identity{SubjectID: "system", IsAuthenticated: true, IsStaff: true}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
