package main

import (
	"context"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newContextCmd() *cobra.Command {
	return group("context", "Manage the .m365rc.json context of the current folder",
		a.newContextInitCmd(),
		a.newContextRemoveCmd(),
		group("option", "Manage options stored in the context",
			a.newContextOptionSetCmd(),
			a.newContextOptionListCmd(),
			a.newContextOptionRemoveCmd(),
		),
	)
}

func (a *app) newContextInitCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "init",
		Short: "Initiates CLI for Microsoft 365 context in the current working folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				file, err := a.contextFile()
				if err != nil {
					return err
				}
				return file.Init()
			})
		},
	})
}

func (a *app) newContextRemoveCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "remove",
		Short: "Removes the CLI for Microsoft 365 context in the current working folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				file, err := a.contextFile()
				if err != nil {
					return err
				}
				return file.Remove()
			})
		},
	})
}

type contextOptionSetOptions struct {
	Name  string `flag:"name,n" desc:"The name of the option" required:"true"`
	Value string `flag:"value,v" desc:"The value of the option" required:"true"`
}

func (a *app) newContextOptionSetCmd() *cobra.Command {
	opts := &contextOptionSetOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "set",
		Short: "Allows to add a new name for the option and value to the local context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				file, err := a.contextFile()
				if err != nil {
					return err
				}
				a.log.Info("saving context option", zap.String("name", opts.Name))
				return file.SetOption(opts.Name, opts.Value)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}

func (a *app) newContextOptionListCmd() *cobra.Command {
	return withoutContext(&cobra.Command{
		Use:   "list",
		Short: "Lists options stored in the context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				file, err := a.contextFile()
				if err != nil {
					return err
				}
				opts, err := file.Options()
				if err != nil {
					return err
				}
				return a.print(opts)
			})
		},
	})
}

type contextOptionRemoveOptions struct {
	Name string `flag:"name,n" desc:"The name of the option to remove" required:"true"`
}

func (a *app) newContextOptionRemoveCmd() *cobra.Command {
	opts := &contextOptionRemoveOptions{}
	cmd := withoutContext(&cobra.Command{
		Use:   "remove",
		Short: "Removes an option from the context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, command.Spec{}, func(_ context.Context) error {
				file, err := a.contextFile()
				if err != nil {
					return err
				}
				return file.RemoveOption(opts.Name)
			})
		},
	})
	command.MustBindFlags(cmd, opts)
	return cmd
}
