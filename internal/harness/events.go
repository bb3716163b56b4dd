package harness

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/states/challenge"
)

type signInArgs struct {
	Method   string            `mapstructure:"method"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Metadata map[string]string `mapstructure:"metadata"`
	HostedUI hostedUIArgs      `mapstructure:"hosted_ui"`
}

type hostedUIArgs struct {
	Scopes           []string `mapstructure:"scopes"`
	IdentityProvider string   `mapstructure:"identity_provider"`
	IDPIdentifier    string   `mapstructure:"idp_identifier"`
	PrivateSession   bool     `mapstructure:"private_session"`
}

type answerArgs struct {
	Answer   string            `mapstructure:"answer"`
	Metadata map[string]string `mapstructure:"metadata"`
}

type signOutArgs struct {
	Global bool `mapstructure:"global"`
}

// eventDecoders are the events a scenario may send: the ones a caller of the
// authentication API can cause. Events only actions send are not listed.
var eventDecoders = map[string]func(args map[string]any) (engine.Event, error){
	authn.Configure{}.Type(): noArgs(authn.Configure{}),
	authn.SignInRequested{}.Type(): func(args map[string]any) (engine.Event, error) {
		var a signInArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		req := data.NewSignInData(data.SignInMethod(a.Method), a.Username, a.Password, a.Metadata)
		req.HostedUI = data.HostedUIOptions{
			Scopes:           a.HostedUI.Scopes,
			IdentityProvider: a.HostedUI.IdentityProvider,
			IDPIdentifier:    a.HostedUI.IDPIdentifier,
			PrivateSession:   a.HostedUI.PrivateSession,
		}
		return authn.SignInRequested{SignIn: req}, nil
	},
	challenge.VerifyChallengeAnswer{}.Type(): func(args map[string]any) (engine.Event, error) {
		var a answerArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return challenge.VerifyChallengeAnswer{Answer: a.Answer, ClientMetadata: a.Metadata}, nil
	},
	authn.CancelSignIn{}.Type(): noArgs(authn.CancelSignIn{}),
	authn.SignOutRequested{}.Type(): func(args map[string]any) (engine.Event, error) {
		var a signOutArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return authn.SignOutRequested{SignOut: data.SignOutData{GlobalSignOut: a.Global}}, nil
	},
	authn.RefreshSession{}.Type(): noArgs(authn.RefreshSession{}),
	authn.Reset{}.Type():          noArgs(authn.Reset{}),
}

// DecodeEvent builds the event named typ from scenario args.
func DecodeEvent(typ string, args map[string]any) (engine.Event, error) {
	decode, ok := eventDecoders[typ]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", typ)
	}
	ev, err := decode(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	return ev, nil
}

func noArgs(ev engine.Event) func(map[string]any) (engine.Event, error) {
	return func(args map[string]any) (engine.Event, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("takes no args")
		}
		return ev, nil
	}
}

// decodeArgs decodes args into out, rejecting keys out does not have.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}
