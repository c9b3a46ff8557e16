package sikola

import (
	"context"

	"github.com/tcnksm/go-input"
)

type Credentials struct {
	Username string
	Password string
}

// CredentialsProvider supplies the username and password used to log in.
type CredentialsProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials provides fixed credentials, usually from config or flags.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(ctx context.Context) (Credentials, error) {
	if s.Username == "" || s.Password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials(s), nil
}

// PromptCredentials asks for whatever is missing on the console.
type PromptCredentials struct {
	UI *input.UI
	// Username is used as is when set, only the password is asked for.
	Username string
	// MaskPassword hides the typed password, it requires the UI to read from a terminal.
	MaskPassword bool
}

func (p PromptCredentials) Credentials(ctx context.Context) (Credentials, error) {
	ui := p.UI
	if ui == nil {
		ui = input.DefaultUI()
	}

	username := p.Username
	if username == "" {
		var err error
		username, err = ui.Ask("Username (NIM)", &input.Options{
			Required:  true,
			Loop:      true,
			HideOrder: true,
		})
		if err != nil {
			return Credentials{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}

	password, err := ui.Ask("Password", &input.Options{
		Required:  true,
		Loop:      true,
		HideOrder: true,
		Mask:      p.MaskPassword,
	})
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{Username: username, Password: password}, nil
}
