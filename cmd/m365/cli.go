package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runningdeveloper/cli-microsoft365/internal/config"
	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/consent"
	"github.com/spf13/cobra"
)

func (a *app) newCLICmd() *cobra.Command {
	return group("cli", "Manage the CLI itself",
		a.newReconsentCmd(),
		group("config", "Manage the CLI settings",
			a.newConfigGetCmd(),
			a.newConfigSetCmd(),
			a.newConfigListCmd(),
			a.newConfigResetCmd(),
		),
	)
}

func (a *app) newReconsentCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "reconsent",
		Short: "Returns Microsoft Entra ID URL to re-consent the CLI application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				return consent.Reconsent(a.stdout, a.settings.Tenant, a.settings.ClientID, a.settings.AutoOpenLinksInBrowser, a.open)
			})
		},
	})
}

// validKey rejects names that are not settings.
func validKey(key string) error {
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("'%s' is not a valid setting. Allowed values: %s", key, strings.Join(config.Keys(), ", "))
	}
	return nil
}

type configKeyOptions struct {
	Key string `flag:"key,k" desc:"Setting to read" required:"true"`
}

func (a *app) newConfigGetCmd() *cobra.Command {
	opts := &configKeyOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "get",
		Short: "Gets value of a CLI setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{Validators: []command.Validator{func() error { return validKey(opts.Key) }}}
			return a.run(cmd, spec, func(_ context.Context) error {
				v, err := a.settings.Get(opts.Key)
				if err != nil {
					return err
				}
				if v == "" {
					return nil
				}
				return a.print(v)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}

type configSetOptions struct {
	Key   string `flag:"key,k" desc:"Setting to change" required:"true"`
	Value string `flag:"value,v" desc:"Value to store" required:"true"`
}

func (a *app) newConfigSetCmd() *cobra.Command {
	opts := &configSetOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "set",
		Short: "Manage global configuration settings about the CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{Validators: []command.Validator{func() error { return validKey(opts.Key) }}}
			return a.run(cmd, spec, func(_ context.Context) error {
				return a.settings.Set(opts.Key, opts.Value)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}

func (a *app) newConfigListCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "list",
		Short: "List all self set CLI configuration settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				return a.print(a.settings.Stored())
			})
		},
	})
}

type configResetOptions struct {
	Key string `flag:"key,k" desc:"Setting to reset. All settings are reset when omitted"`
}

func (a *app) newConfigResetCmd() *cobra.Command {
	opts := &configResetOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "reset",
		Short: "Resets the specified CLI configuration option to its default value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{Validators: []command.Validator{func() error {
				if opts.Key == "" {
					return nil
				}
				return validKey(opts.Key)
			}}}
			return a.run(cmd, spec, func(_ context.Context) error {
				return a.settings.Reset(opts.Key)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}
