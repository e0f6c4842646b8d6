// Package service contains the business rules: credentials, authentication,
// ownership and the article and like operations.
package service

// Identity is the caller a request was authenticated as. It is passed
// explicitly to every service call; the zero value is the anonymous caller.
type Identity struct {
	UserID uint
	Email  string
	Name   string
}

// Anonymous is the identity of a request that sent no credentials.
var Anonymous = Identity{}

// IsAnonymous reports whether no user is bound to the identity.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}
