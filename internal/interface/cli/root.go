package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/aqi-search/internal/domain/search"
	"github.com/yanqian/aqi-search/internal/infra/aqiapi"
	"github.com/yanqian/aqi-search/internal/infra/config"
	"github.com/yanqian/aqi-search/internal/interface/view"
	"github.com/yanqian/aqi-search/pkg/logger"
)

// ErrSearchFailed is returned when a one-shot search ends in the failed state.
// The failure message has already been rendered when it is returned.
var ErrSearchFailed = errors.New("search failed")

// Options holds process level inputs of the terminal client.
type Options struct {
	Verbose bool
	Stderr  io.Writer
}

// session is the controller and rendering setup shared by the commands.
type session struct {
	controller *search.Controller
	viewOpts   view.Options
	textOpts   view.TextOptions
}

// NewRootCmd wires the cobra root command. Running it without a subcommand
// starts the interactive prompt.
func NewRootCmd(cfg config.ClientConfig, opts Options) *cobra.Command {
	var (
		backend  string
		timeout  time.Duration
		timezone string
		noColor  bool
		verbose  bool
		sess     session
	)

	root := &cobra.Command{
		Use:           "aqi",
		Short:         "Air Quality Index (AQI) search",
		Long:          "aqi looks up the current air quality of a city through the AQI backend.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			clientCfg := cfg
			if cmd.Flags().Changed("backend") {
				clientCfg.BackendURL = backend
			}
			if cmd.Flags().Changed("timeout") {
				clientCfg.Timeout = timeout
			}
			if cmd.Flags().Changed("timezone") {
				clientCfg.Timezone = timezone
			}
			if noColor || os.Getenv("NO_COLOR") != "" {
				clientCfg.Color = false
			}
			if err := clientCfg.Validate(); err != nil {
				return err
			}

			built, err := newSession(clientCfg, logger.NewConsole(stderrOf(cmd, opts), opts.Verbose || verbose))
			if err != nil {
				return err
			}
			sess = built
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, &sess)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&backend, "backend", cfg.BackendURL, "Base URL of the AQI backend")
	flags.DurationVar(&timeout, "timeout", cfg.Timeout, "Request timeout")
	flags.StringVar(&timezone, "timezone", cfg.Timezone, "IANA timezone for timestamps (default local)")
	flags.BoolVar(&noColor, "no-color", false, "Disable the colored AQI badge")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newSearchCommand(&sess))
	root.AddCommand(newPromptCommand(&sess))
	return root
}

func newSession(cfg config.ClientConfig, log *slog.Logger) (session, error) {
	loc, err := cfg.Location()
	if err != nil {
		return session{}, fmt.Errorf("load timezone: %w", err)
	}
	client := aqiapi.NewClient(cfg.BackendURL, cfg.Timeout)
	return session{
		controller: search.NewController(client, log),
		viewOpts:   view.Options{Location: loc, TimeLayout: cfg.TimeLayout},
		textOpts:   view.TextOptions{Color: cfg.Color},
	}, nil
}

// render prints a state as soon as the controller publishes it.
func (s *session) render(w io.Writer) search.Listener {
	return func(state search.State) {
		_ = view.RenderText(w, view.Present(state, s.viewOpts), s.textOpts)
	}
}

func newSearchCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "search <city>",
		Short: "Look up the air quality of one city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unsubscribe := sess.controller.Subscribe(sess.render(cmd.OutOrStdout()))
			defer unsubscribe()

			state := sess.controller.Submit(cmd.Context(), strings.Join(args, " "))
			if state.Kind() == search.KindFailed {
				return ErrSearchFailed
			}
			return nil
		},
	}
}

func newPromptCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Search cities interactively, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, sess)
		},
	}
}

func stderrOf(cmd *cobra.Command, opts Options) io.Writer {
	if opts.Stderr != nil {
		return opts.Stderr
	}
	return cmd.ErrOrStderr()
}
