// Package cli is the cobra front end: one-shot subcommands plus the interactive menu.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
	"ContentCurator/internal/command"
	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	queries    []string
	in         io.Reader
}

// Execute runs the root command against the process streams and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree; the menu reads from in and every command writes to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{in: in}

	root := &cobra.Command{
		Use:          "curator",
		Short:        "Search, score and recommend web articles",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, opts)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringArrayVarP(&opts.queries, "query", "q", nil, "search query to add before running (repeatable)")

	root.AddCommand(
		newMenuCommand(opts),
		newRunCommand(opts),
		newListCommand(opts, "rank", "Show stored articles ranked by sentiment and similarity", command.ShowRanking),
		newListCommand(opts, "recommend", "Show articles the user marked as interesting, most popular first", command.ShowRecommendations),
		newListCommand(opts, "sponsored", "Flag the current recommendations as sponsored and show them", command.SponsoredRecommendations),
		newFeedbackCommand(opts),
		newQueriesCommand(opts),
		newNotifyCommand(opts),
		newScheduleCommand(opts),
	)

	return root
}

// open loads config, wires the application and registers --query values.
func (o *rootOptions) open(cmd *cobra.Command) (*app.Application, error) {
	cfg := config.LoadWithLogger(o.configPath, logging.NewWithWriter(cmd.ErrOrStderr(), "warn"))
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	for _, q := range o.queries {
		if _, err := application.Dispatcher().Dispatch(cmd.Context(), command.Command{Kind: command.AddQuery, Query: q}); err != nil {
			_ = application.Close()
			return nil, err
		}
	}
	return application, nil
}

// withApp opens the application, runs fn and closes it again.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(*app.Application) error) error {
	application, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}

func runMenu(cmd *cobra.Command, opts *rootOptions) error {
	return opts.withApp(cmd, func(a *app.Application) error {
		err := NewMenu(a.Dispatcher(), opts.in, cmd.OutOrStdout()).Run(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func newMenuCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, opts)
		},
	}
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one search, analyze and store pass over all queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				res, err := a.Dispatcher().Dispatch(cmd.Context(), command.Command{Kind: command.RunPipeline})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
}

func newListCommand(opts *rootOptions, use, short string, kind command.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				res, err := a.Dispatcher().Dispatch(cmd.Context(), command.Command{Kind: kind})
				if err != nil {
					return err
				}
				renderArticles(cmd.OutOrStdout(), res.Articles)
				return nil
			})
		},
	}
}

func newFeedbackCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <article-id> <interested|not_interested|none>",
		Short: "Record user feedback for a stored article",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedback, err := domain.ParseFeedback(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.Application) error {
				res, err := a.Dispatcher().Dispatch(cmd.Context(), command.Command{
					Kind:      command.SetFeedback,
					ArticleID: args[0],
					Feedback:  feedback,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
}

func newQueriesCommand(opts *rootOptions) *cobra.Command {
	queries := &cobra.Command{
		Use:   "queries",
		Short: "Manage the search query list",
	}

	queries.AddCommand(&cobra.Command{
		Use:   "add <query>...",
		Short: "Add search queries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				for _, q := range args {
					res, err := a.Dispatcher().Dispatch(cmd.Context(), command.Command{Kind: command.AddQuery, Query: q})
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				}
				return nil
			})
		},
	})

	queries.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List search queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				list, err := a.Queries().Queries(cmd.Context())
				if err != nil {
					return err
				}
				for _, q := range list {
					fmt.Fprintln(cmd.OutOrStdout(), q)
				}
				return nil
			})
		},
	})

	return queries
}

func newNotifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Send the recommendation digest once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				return a.Notify(cmd.Context())
			})
		},
	}
}

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	var metricsAddr string

	schedule := &cobra.Command{
		Use:   "schedule",
		Short: "Run the refresh and daily notification jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.Application) error {
				return a.RunScheduler(cmd.Context(), scheduler.RealClock{}, metricsAddr)
			})
		},
	}
	schedule.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")

	return schedule
}
