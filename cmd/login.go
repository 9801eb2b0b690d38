package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"summa/auth"
	"summa/config"
	"summa/database"
	"summa/domain/services"
	"summa/infrastructure"
	"summa/repository"

	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var loginCmdFlags struct {
	Server string
	Token  string
	UID    string
	Email  string
	Name   string
	Stay   bool
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and mirror the token to a running server",
	Long: `Sign in with a bearer token, or with a locally signed token for a development identity, provision
the account on first sign-in and push the token to the server's session cookie endpoint.
With --stay the token is refreshed on schedule until interrupted, then the session is signed out.`,
	Example: `summa login --uid dev-1 --email dev@example.com --name Dev --server http://localhost:8080
  summa login --token "$ID_TOKEN" --server https://summa.example.com --stay`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg := config.Get()

		source, verifier, err := loginTokenSource(cmd, cfg)
		if err != nil {
			return err
		}

		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		uowFactory := infrastructure.NewUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db), infrastructure.NewNoopEventPublisher(), nil)
		cookies := auth.NewSessionCookies(cfg.SessionCookieSecret, cfg.SessionCookieTTL)
		authenticator := auth.NewAuthenticator(verifier, cookies, services.NewUserService(uowFactory))

		var mirror *auth.Mirror
		var tokenMirror auth.TokenMirror
		if loginCmdFlags.Server != "" {
			mirror = auth.NewMirror(loginCmdFlags.Server)
			tokenMirror = mirror
		}

		authCtx, err := auth.NewContext(authenticator, tokenMirror, cfg.TokenRefreshInterval)
		if err != nil {
			return err
		}
		defer authCtx.Close() //nolint:errcheck

		authCtx.OnChange(func(s auth.Snapshot) {
			entry := log.WithField("state", s.State.String())
			if s.Err != nil {
				entry = entry.WithError(s.Err)
			}
			entry.Debug("Auth state changed")
		})

		if err := authCtx.SignIn(ctx, source); err != nil {
			return err
		}

		myself, err := authCtx.Myself()
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Signed in as %s (%s)", myself.Username, myself.Email)
		if mirror != nil {
			if mirror.Cookie() == "" {
				pterm.Warning.Printfln("%s did not set a session cookie", loginCmdFlags.Server)
			} else {
				pterm.Info.Printfln("Session cookie %s mirrored to %s", auth.CookieName, loginCmdFlags.Server)
			}
		}

		if !loginCmdFlags.Stay {
			return nil
		}

		pterm.Info.Printfln("Refreshing every %s, interrupt to sign out", cfg.TokenRefreshInterval)
		<-ctx.Done()

		signOutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return authCtx.SignOut(signOutCtx)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginCmdFlags.Server, "server", "", "Base URL of the server holding the session cookie")
	loginCmd.Flags().StringVar(&loginCmdFlags.Token, "token", "", "Bearer token from the identity provider")
	loginCmd.Flags().StringVar(&loginCmdFlags.UID, "uid", "", "Development identity id, signs a local token")
	loginCmd.Flags().StringVar(&loginCmdFlags.Email, "email", "", "Development identity email")
	loginCmd.Flags().StringVar(&loginCmdFlags.Name, "name", "", "Development identity display name")
	loginCmd.Flags().BoolVar(&loginCmdFlags.Stay, "stay", false, "Keep refreshing the token until interrupted")
	loginCmd.MarkFlagsMutuallyExclusive("token", "uid")
	rootCmd.AddCommand(loginCmd)
}

func loginTokenSource(cmd *cobra.Command, cfg *config.Config) (auth.TokenSource, auth.TokenVerifier, error) {
	verifier, err := newTokenVerifier(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	if loginCmdFlags.Token != "" {
		return auth.StaticTokenSource(loginCmdFlags.Token), verifier, nil
	}

	if loginCmdFlags.UID == "" {
		return nil, nil, errors.New("either --token or --uid is required")
	}
	hmacVerifier, ok := verifier.(*auth.HMACVerifier)
	if !ok {
		return nil, nil, fmt.Errorf("development identities need AUTH_PROVIDER=hmac, got %s", cfg.AuthProvider)
	}

	identity := &auth.Identity{
		UID:   loginCmdFlags.UID,
		Email: loginCmdFlags.Email,
		Name:  loginCmdFlags.Name,
	}
	// Tokens must outlive one refresh interval
	return auth.NewHMACTokenSource(hmacVerifier, identity, 2*cfg.TokenRefreshInterval), hmacVerifier, nil
}
