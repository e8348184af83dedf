package main

import (
	"context"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/teams"
	"github.com/spf13/cobra"
)

func (a *app) newTeamsCmd() *cobra.Command {
	return group("teams", "Manage Microsoft Teams",
		group("tab", "Manage channel tabs",
			a.newTeamsTabGetCmd(),
		),
	)
}

func (a *app) newTeamsTabGetCmd() *cobra.Command {
	opts := &teams.TabGetOptions{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Gets information about the specified Microsoft Teams tab",
		Example: `  # Get a tab by names
  m365 teams tab get --teamName "Team Name" --channelName "Channel Name" --tabName "Tab Name"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{
				OptionSets: teams.TabGetOptionSets,
				Validators: []command.Validator{opts.Validate},
			}
			return a.run(cmd, spec, func(ctx context.Context) error {
				tab, err := teams.GetTab(ctx, a.client, a.log, opts)
				if err != nil {
					return err
				}
				return a.print(tab)
			})
		},
	}
	command.MustBindFlags(cmd, opts)
	return cmd
}
