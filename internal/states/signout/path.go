package signout

import "github.com/roach88/authflow/internal/data"

// Path is the first step of a sign-out.
type Path string

const (
	PathHostedUI Path = "hostedUI"
	PathGlobal   Path = "global"
	PathRevoke   Path = "revoke"
	PathLocal    Path = "local"
)

// SelectPath picks the first sign-out step. Rules, first match wins:
//
//  1. session obtained through hosted UI: hosted logout (then global
//     sign-out if requested, then revoke)
//  2. global sign-out requested: global sign-out (then revoke)
//  3. any session: revoke the refresh token
//  4. no session: clear local state only
//
// Every path ends by clearing the local credential.
func SelectPath(session *data.SignedInData, req data.SignOutData) Path {
	if session == nil {
		return PathLocal
	}
	switch {
	case session.Method == data.MethodHostedUI:
		return PathHostedUI
	case req.GlobalSignOut:
		return PathGlobal
	default:
		return PathRevoke
	}
}
