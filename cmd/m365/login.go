package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/runningdeveloper/cli-microsoft365/pkg/auth"
	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type loginOptions struct {
	AuthType string `flag:"authType,t" desc:"Method used to log in: deviceCode or secret. Defaults to the authType setting"`
	AppID    string `flag:"appId" desc:"ID of the Entra ID application to use. Defaults to the clientId setting"`
	Tenant   string `flag:"tenant" desc:"ID or name of the tenant to log in to. Defaults to the tenant setting"`
	Secret   string `flag:"secret,s" desc:"Client secret, when authType is secret. Defaults to M365_CLIENT_SECRET"`
}

func (o *loginOptions) validate() error {
	switch o.AuthType {
	case "", auth.AuthTypeDeviceCode, auth.AuthTypeSecret:
		return nil
	}
	return fmt.Errorf("'%s' is not a valid authentication type. Allowed authentication types are %s, %s", o.AuthType, auth.AuthTypeDeviceCode, auth.AuthTypeSecret)
}

func (a *app) newLoginCmd() *cobra.Command {
	opts := &loginOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "login",
		Short: "Log in to Microsoft 365",
		Long: `Log in to Microsoft 365.

With the device code flow the CLI shows a code to enter at
https://microsoft.com/devicelogin and waits until the login completes.
With a client secret the CLI logs in as the application itself.`,
		Example: `  # Log in interactively
  m365 login

  # Log in with a client secret
  m365 login --authType secret --appId <appId> --tenant contoso.onmicrosoft.com --secret <secret>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{Validators: []command.Validator{opts.validate}}
			return a.run(cmd, spec, func(ctx context.Context) error {
				return a.login(ctx, opts)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}

func (a *app) login(ctx context.Context, opts *loginOptions) error {
	authType := orSetting(opts.AuthType, a.settings.AuthType)
	appID := orSetting(opts.AppID, a.settings.ClientID)
	tenant := orSetting(opts.Tenant, a.settings.Tenant)

	// Log out first so a failed login does not leave the old connection behind.
	if err := a.auth.Logout(); err != nil {
		return err
	}

	if authType == auth.AuthTypeSecret {
		_, err := a.auth.LoginSecret(ctx, appID, tenant, orSetting(opts.Secret, a.settings.ClientSecret))
		return err
	}

	_, err := a.auth.LoginDeviceCode(ctx, appID, tenant, func(dc auth.DeviceCode) error {
		if _, err := fmt.Fprintln(a.stderr, dc.Message); err != nil {
			return err
		}
		if a.settings.AutoOpenLinksInBrowser && dc.VerificationURI != "" {
			if err := a.open(dc.VerificationURI); err != nil {
				a.log.Warn("failed to open the browser", zap.Error(err))
			}
		}
		return nil
	})
	return err
}

func orSetting(flag, setting string) string {
	if flag != "" {
		return flag
	}
	return setting
}

func (a *app) newLogoutCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "logout",
		Short: "Log out from Microsoft 365",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				return a.auth.Logout()
			})
		},
	})
}

func (a *app) newStatusCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "status",
		Short: "Shows Microsoft 365 login status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				status, err := a.auth.Status()
				if errors.Is(err, auth.ErrNotLoggedIn) {
					return a.print("Logged out")
				}
				if err != nil {
					return err
				}
				return a.print(status)
			})
		},
	})
}
