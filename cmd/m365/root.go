package main

import (
	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/spf13/cobra"
)

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "m365",
		Short: "Manage Microsoft 365 from the command line",
		Long: `m365 manages Microsoft 365 tenants: SharePoint Online lists, taxonomy and
files, and Microsoft Teams, through SharePoint REST, CSOM and Microsoft Graph.

Log in first with "m365 login". Options you use often can be stored in a
.m365rc.json context file with "m365 context option set".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	if _, err := command.BindFlags(root.PersistentFlags(), &a.opts); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.newCLICmd(),
		a.newContextCmd(),
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newStatusCmd(),
		a.newSpoCmd(),
		a.newTeamsCmd(),
	)
	return root
}

// group returns a command that only holds subcommands.
func group(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	cmd.AddCommand(children...)
	return cmd
}

// withoutContext marks cmd so that .m365rc.json never supplies its options.
func withoutContext(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationContextExcluded] = "*"
	return cmd
}
