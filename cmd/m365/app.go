package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/runningdeveloper/cli-microsoft365/internal/config"
	"github.com/runningdeveloper/cli-microsoft365/internal/logging"
	"github.com/runningdeveloper/cli-microsoft365/pkg/auth"
	"github.com/runningdeveloper/cli-microsoft365/pkg/command"
	"github.com/runningdeveloper/cli-microsoft365/pkg/consent"
	"github.com/runningdeveloper/cli-microsoft365/pkg/output"
	"github.com/runningdeveloper/cli-microsoft365/pkg/rc"
	"github.com/runningdeveloper/cli-microsoft365/pkg/request"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// annotationContextExcluded lists, comma separated, the options of a
// command never taken from .m365rc.json. "*" skips the context entirely.
const annotationContextExcluded = "m365/contextExcluded"

// globalOptions are the persistent flags of every command.
type globalOptions struct {
	Output  string `flag:"output,o" desc:"Output type: json, text, csv, md or none"`
	Debug   bool   `flag:"debug" desc:"Run the command in debug mode"`
	Verbose bool   `flag:"verbose" desc:"Run the command in verbose mode"`
}

// app is one invocation of the CLI and everything commands share.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// configDir and workDir default to config.DefaultDir and the
	// working directory.
	configDir string
	workDir   string

	// transport and authority point requests elsewhere in tests.
	transport http.RoundTripper
	authority string
	open      consent.Opener

	opts     globalOptions
	settings *config.Settings
	log      *zap.Logger
	auth     *auth.Service
	client   *request.Client
	rcFile   *rc.File
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		open:   consent.OpenBrowser,
	}
}

// execute runs args and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return 0
	}

	w := a.stderr
	if a.settings != nil && a.settings.ErrorOutput == "stdout" {
		w = a.stdout
	}
	fmt.Fprintln(w, errorStyle(w).Render("Error: "+err.Error()))
	if a.settings != nil && a.settings.ShowHelpOnFailure && cmd != nil {
		cmd.SetOut(w)
		_ = cmd.Usage()
	}
	return 1
}

func errorStyle(w io.Writer) lipgloss.Style {
	style := lipgloss.NewStyle()
	if f, ok := w.(*os.File); ok && logging.IsTerminal(f) {
		style = style.Foreground(lipgloss.Color("1"))
	}
	return style
}

// setup builds the runtime for cmd and applies context defaults to the
// flags the user did not pass.
func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	a.settings = settings

	if !cmd.Flags().Changed("output") {
		a.opts.Output = settings.Output
	}

	var sink zapcore.WriteSyncer
	if f, ok := a.stderr.(*os.File); ok {
		sink = f
	} else {
		sink = zapcore.AddSync(a.stderr)
	}
	a.log = logging.New(sink, logging.Options{Debug: a.opts.Debug, Verbose: a.opts.Verbose})

	a.auth = auth.NewService(auth.NewFileStore(settings.Dir()), a.log)
	if a.authority != "" {
		a.auth.Authority = a.authority
	}
	a.client = request.NewClient(a.auth, a.log)
	if a.transport != nil {
		a.auth.HTTPClient.Transport = a.transport
		a.client.HTTPClient.Transport = a.transport
	}

	if err := a.applyContext(cmd); err != nil {
		return err
	}
	// Output may come from the context file too.
	return output.ValidateFormat(a.opts.Output)
}

func (a *app) applyContext(cmd *cobra.Command) error {
	excluded := strings.Split(cmd.Annotations[annotationContextExcluded], ",")
	if len(excluded) == 1 && excluded[0] == "*" {
		return nil
	}

	file, err := a.contextFile()
	if err != nil {
		return err
	}
	defaults, err := file.Defaults()
	if err != nil {
		return err
	}
	if len(defaults) > 0 {
		options := make([]string, 0, len(defaults))
		for k := range defaults {
			options = append(options, k)
		}
		slices.Sort(options)
		a.log.Debug("applying context options", zap.Strings("options", options))
	}
	return command.ApplyDefaults(cmd.Flags(), defaults, excluded...)
}

// contextFile returns the .m365rc.json of the working directory.
func (a *app) contextFile() (*rc.File, error) {
	if a.rcFile != nil {
		return a.rcFile, nil
	}
	dir := a.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	a.rcFile = rc.New(dir)
	return a.rcFile, nil
}

// run validates cmd's options against spec and runs action.
func (a *app) run(cmd *cobra.Command, spec command.Spec, action func(ctx context.Context) error) error {
	inv := command.Invocation{
		Name:   strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "),
		Flags:  cmd.LocalNonPersistentFlags(),
		Logger: a.log,
	}
	return command.Run(cmd.Context(), inv, spec, func(ctx context.Context) error {
		err := action(ctx)
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return &command.Error{Code: command.ErrCodeNotLoggedIn, Message: auth.ErrNotLoggedIn.Error(), Cause: err}
		}
		return err
	})
}

// print writes a command result in the selected output format.
func (a *app) print(v any) error {
	return output.Write(a.stdout, a.opts.Output, v, output.Options{CSVHeader: a.settings.CSVHeader})
}
