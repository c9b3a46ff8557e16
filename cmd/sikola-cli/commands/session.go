package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sikola-tools/cmd/sikola-cli/globals"
	"sikola-tools/internal/courseindex"
	"sikola-tools/internal/sikola"

	"github.com/tcnksm/go-input"
	"golang.org/x/term"
)

func portalOptions(v *globals.Value) sikola.PortalOptions {
	return sikola.PortalOptions{
		BaseUrl:                 v.Config.BaseUrl,
		CategoryCode:            v.Config.CategoryCode,
		PageLength:              v.Config.PageLength,
		RequestsPerSecond:       v.Config.RequestsPerSecond,
		Timeout:                 time.Duration(v.Config.TimeoutSeconds) * time.Second,
		DisableCloudflareBypass: v.Config.DisableCloudflareBypass,
		HttpDump:                v.HttpDump,
	}
}

func newPortal(v *globals.Value) (*sikola.Portal, error) {
	return sikola.NewPortal(portalOptions(v), v.Tel)
}

// credentials uses the configured username and password, prompting for
// whichever of the two is missing.
func credentials(v *globals.Value) sikola.CredentialsProvider {
	if v.Config.Username != "" && v.Config.Password != "" {
		return sikola.StaticCredentials{
			Username: v.Config.Username,
			Password: v.Config.Password,
		}
	}
	return sikola.PromptCredentials{
		UI:           input.DefaultUI(),
		Username:     v.Config.Username,
		MaskPassword: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func login(ctx context.Context, v *globals.Value) (*sikola.Session, error) {
	portal, err := newPortal(v)
	if err != nil {
		return nil, err
	}
	session, err := portal.Login(ctx, credentials(v))
	if err != nil {
		return nil, describeError(err)
	}
	fmt.Printf("Welcome, %s\n", session.Name)
	return session, nil
}

// describeError turns the scraper's error kinds into something a user can act on.
func describeError(err error) error {
	var rejected *sikola.LoginRejectedError
	var status *sikola.StatusError
	var network *sikola.NetworkError
	switch {
	case errors.As(err, &rejected):
		if rejected.Message == "" {
			return fmt.Errorf("login failed with status %d", rejected.Status)
		}
		return fmt.Errorf("login failed with status %d: %s", rejected.Status, rejected.Message)
	case errors.As(err, &status):
		return fmt.Errorf("the portal answered %d while trying to %s", status.Status, status.Op)
	case errors.As(err, &network):
		return fmt.Errorf("could not reach the portal: %w", network.Err)
	case sikola.IsMarkupError(err):
		return fmt.Errorf("the portal's pages no longer look as expected, rerun with --dump-http to inspect them: %w", err)
	}
	return err
}

func openIndex(v *globals.Value) (courseindex.Store, error) {
	store, err := courseindex.Open(v.Config.IndexDb, v.Clock)
	if err != nil {
		return courseindex.Store{}, fmt.Errorf("open course index: %w", err)
	}
	slog.Debug("opened course index", "path", v.Config.IndexDb)
	return store, nil
}
