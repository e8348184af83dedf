package main

import (
	"context"
	"strings"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/output"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo/file"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo/list"
	"github.com/runningdeveloper/cli-microsoft365/pkg/spo/term"
	"github.com/spf13/cobra"
)

func (a *app) newSpoCmd() *cobra.Command {
	return group("spo", "Manage SharePoint Online",
		group("list", "Manage SharePoint lists",
			a.newSpoListAddCmd(),
			group("view", "Manage list views",
				group("field", "Manage the fields of a list view",
					a.newSpoListViewFieldAddCmd(),
				),
			),
		),
		group("term", "Manage the taxonomy",
			group("set", "Manage term sets",
				a.newSpoTermSetAddCmd(),
			),
		),
		group("file", "Manage files",
			group("sharinginfo", "Manage file sharing information",
				a.newSpoFileSharingInfoGetCmd(),
			),
		),
	)
}

func (a *app) newSpoListAddCmd() *cobra.Command {
	opts := &list.AddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Creates list in the specified site",
		Example: `  # Add a list named Announcements based on the Announcements template
  m365 spo list add --title Announcements --baseTemplate Announcements --webUrl https://contoso.sharepoint.com/sites/project-x

  # Add a versioned document library
  m365 spo list add --title Documents --baseTemplate DocumentLibrary --webUrl https://contoso.sharepoint.com/sites/project-x --enableVersioning true --majorVersionLimit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{Validators: []command.Validator{opts.Validate}}
			return a.run(cmd, spec, func(ctx context.Context) error {
				created, err := list.Add(ctx, a.client, a.log, opts)
				if err != nil {
					return err
				}
				return a.print(created)
			})
		},
	}
	command.MustBindFlags(cmd, opts)
	_ = cmd.RegisterFlagCompletionFunc("baseTemplate", fixedCompletion(list.BaseTemplates()))
	_ = cmd.RegisterFlagCompletionFunc("direction", fixedCompletion(list.Directions()))
	return cmd
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func (a *app) newSpoListViewFieldAddCmd() *cobra.Command {
	opts := &list.ViewFieldAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Adds the specified field to list view",
		Example: `  # Add a field to a view and move it to the first position
  m365 spo list view field add --webUrl https://contoso.sharepoint.com/sites/project-x --listTitle Documents --viewTitle "All Documents" --fieldTitle Status --fieldPosition 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{
				OptionSets: list.ViewFieldAddOptionSets,
				Validators: []command.Validator{opts.Validate},
			}
			return a.run(cmd, spec, func(ctx context.Context) error {
				return list.AddViewField(ctx, a.client, a.log, opts)
			})
		},
	}
	command.MustBindFlags(cmd, opts)
	return cmd
}

func (a *app) newSpoTermSetAddCmd() *cobra.Command {
	opts := &term.SetAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Adds taxonomy term set",
		Example: `  # Add a term set with custom properties to the PnPTermSets group
  m365 spo term set add --name PnP-Organizations --termGroupName PnPTermSets --customProperties '{"Prop1": "Value1"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{
				OptionSets: term.SetAddOptionSets,
				Validators: []command.Validator{opts.Validate},
			}
			return a.run(cmd, spec, func(ctx context.Context) error {
				set, err := term.AddSet(ctx, a.client, a.auth, a.log, opts)
				if err != nil {
					return err
				}
				return a.print(set)
			})
		},
	}
	command.MustBindFlags(cmd, opts)
	return cmd
}

func (a *app) newSpoFileSharingInfoGetCmd() *cobra.Command {
	opts := &file.SharingInfoOptions{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Generates a sharing information report for the specified file",
		Example: `  # Report who a file is shared with
  m365 spo file sharinginfo get --webUrl https://contoso.sharepoint.com --url "/sites/project-x/Documents/SharedFile.docx" --output text`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationContextExcluded: strings.Join(file.SharingInfoContextExcluded, ",")},
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec := command.Spec{
				OptionSets: file.SharingInfoOptionSets,
				Validators: []command.Validator{opts.Validate},
			}
			return a.run(cmd, spec, func(ctx context.Context) error {
				raw, err := file.GetSharingInfo(ctx, a.client, a.log, opts)
				if err != nil {
					return err
				}
				if a.opts.Output == output.JSON {
					return a.print(raw)
				}
				rows, err := file.Report(raw)
				if err != nil {
					return err
				}
				return a.print(rows)
			})
		},
	}
	command.MustBindFlags(cmd, opts)
	return cmd
}
