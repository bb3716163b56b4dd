package data

import "maps"

// ChallengeName is a provider challenge type.
type ChallengeName string

const (
	ChallengePasswordVerifier    ChallengeName = "PASSWORD_VERIFIER"
	ChallengeSMSMFA              ChallengeName = "SMS_MFA"
	ChallengeSoftwareTokenMFA    ChallengeName = "SOFTWARE_TOKEN_MFA"
	ChallengeCustom              ChallengeName = "CUSTOM_CHALLENGE"
	ChallengeNewPasswordRequired ChallengeName = "NEW_PASSWORD_REQUIRED"
)

// answerKeys maps user-facing challenges to the response key carrying the
// answer. Challenges missing here cannot be answered by the user.
var answerKeys = map[ChallengeName]string{
	ChallengeSMSMFA:              "SMS_MFA_CODE",
	ChallengeSoftwareTokenMFA:    "SOFTWARE_TOKEN_MFA_CODE",
	ChallengeCustom:              "ANSWER",
	ChallengeNewPasswordRequired: "NEW_PASSWORD",
}

// AnswerKey returns the response key for name.
func AnswerKey(name ChallengeName) (string, bool) {
	key, ok := answerKeys[name]
	return key, ok
}

// AuthChallenge is a challenge issued by the provider mid sign-in.
type AuthChallenge struct {
	Name       ChallengeName
	Username   string
	Session    string
	Parameters map[string]string
}

// NewAuthChallenge copies params so that the challenge stays immutable.
func NewAuthChallenge(name ChallengeName, username, session string, params map[string]string) AuthChallenge {
	return AuthChallenge{
		Name:       name,
		Username:   username,
		Session:    session,
		Parameters: maps.Clone(params),
	}
}

// AuthResult is the outcome of InitiateAuth or RespondToChallenge: exactly
// one of Challenge or Tokens is set.
type AuthResult struct {
	Challenge *AuthChallenge
	Tokens    *Tokens
}

// IsChallenge reports whether the provider asked for another step.
func (r AuthResult) IsChallenge() bool {
	return r.Challenge != nil
}
