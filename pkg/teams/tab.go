// Package teams implements the Microsoft Teams commands on top of
// Microsoft Graph.
package teams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/formatting"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/runningdeveloper/cli-microsoft365/pkg/validation"
	"go.uber.org/zap"
)

// GraphURL is the Microsoft Graph v1.0 endpoint.
const GraphURL = "https://graph.microsoft.com/v1.0"

// TabGetOptions are the options of "teams tab get".
type TabGetOptions struct {
	TeamID      string `flag:"teamId" desc:"The ID of the Microsoft Teams team where the tab is located"`
	TeamName    string `flag:"teamName" desc:"The display name of the Microsoft Teams team where the tab is located"`
	ChannelID   string `flag:"channelId" desc:"The ID of the Microsoft Teams channel where the tab is located"`
	ChannelName string `flag:"channelName" desc:"The display name of the Microsoft Teams channel where the tab is located"`
	TabID       string `flag:"tabId" desc:"The ID of the Microsoft Teams tab"`
	TabName     string `flag:"tabName" desc:"The display name of the Microsoft Teams tab"`
}

// TabGetOptionSets pick the team, channel and tab.
var TabGetOptionSets = []command.OptionSet{
	{"teamId", "teamName"},
	{"channelId", "channelName"},
	{"tabId", "tabName"},
}

// Validate checks the options, returning the first problem found.
func (o *TabGetOptions) Validate() error {
	if o.TeamID != "" && !validation.IsValidGUID(o.TeamID) {
		return fmt.Errorf("%s is not a valid GUID", o.TeamID)
	}
	if o.ChannelID != "" && !validation.IsValidTeamsChannelID(o.ChannelID) {
		return fmt.Errorf("%s is not a valid Teams ChannelId", o.ChannelID)
	}
	if o.TabID != "" && !validation.IsValidGUID(o.TabID) {
		return fmt.Errorf("%s is not a valid GUID", o.TabID)
	}
	return nil
}

type group struct {
	ID                          string   `json:"id"`
	ResourceProvisioningOptions []string `json:"resourceProvisioningOptions"`
}

type named struct {
	ID string `json:"id"`
}

func filterByName(name string) string {
	return "$filter=displayName%20eq%20'" + formatting.EncodeQueryParameter(name) + "'"
}

func teamID(ctx context.Context, client *request.Client, opts *TabGetOptions) (string, error) {
	if opts.TeamID != "" {
		return opts.TeamID, nil
	}

	var res struct {
		Value []group `json:"value"`
	}
	if err := client.Get(ctx, GraphURL+"/groups?"+filterByName(opts.TeamName), nil, &res); err != nil {
		return "", err
	}

	var ids []string
	for _, g := range res.Value {
		if slices.Contains(g.ResourceProvisioningOptions, "Team") {
			ids = append(ids, g.ID)
		}
	}
	switch len(ids) {
	case 0:
		return "", errors.New("The specified team does not exist in the Microsoft Teams")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("Multiple Microsoft Teams teams with name %s found: %s", opts.TeamName, strings.Join(ids, ", "))
	}
}

func channelID(ctx context.Context, client *request.Client, team string, opts *TabGetOptions) (string, error) {
	if opts.ChannelID != "" {
		return opts.ChannelID, nil
	}

	var res struct {
		Value []named `json:"value"`
	}
	if err := client.Get(ctx, GraphURL+"/teams/"+team+"/channels?"+filterByName(opts.ChannelName), nil, &res); err != nil {
		return "", err
	}
	if len(res.Value) == 0 {
		return "", errors.New("The specified channel does not exist in the Microsoft Teams team")
	}
	return res.Value[0].ID, nil
}

func tabID(ctx context.Context, client *request.Client, tabsURL string, opts *TabGetOptions) (string, error) {
	if opts.TabID != "" {
		return opts.TabID, nil
	}

	var res struct {
		Value []named `json:"value"`
	}
	if err := client.Get(ctx, tabsURL+"?"+filterByName(opts.TabName), nil, &res); err != nil {
		return "", err
	}
	if len(res.Value) == 0 {
		return "", errors.New("The specified tab does not exist in the Microsoft Teams team channel")
	}
	return res.Value[0].ID, nil
}

// GetTab resolves the team, channel and tab, looking names up as needed,
// and returns the tab as Microsoft Graph reports it.
func GetTab(ctx context.Context, client *request.Client, log *zap.Logger, opts *TabGetOptions) (json.RawMessage, error) {
	team, err := teamID(ctx, client, opts)
	if err != nil {
		return nil, err
	}
	channel, err := channelID(ctx, client, team, opts)
	if err != nil {
		return nil, err
	}

	tabsURL := fmt.Sprintf("%s/teams/%s/channels/%s/tabs", GraphURL, team, formatting.EncodeURIComponent(channel))
	tab, err := tabID(ctx, client, tabsURL, opts)
	if err != nil {
		return nil, err
	}

	log.Debug("retrieving tab", zap.String("team", team), zap.String("channel", channel), zap.String("tab", tab))

	var raw json.RawMessage
	if err := client.Get(ctx, tabsURL+"/"+tab, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
