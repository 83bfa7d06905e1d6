package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"redditlogs/internal/config"
	"redditlogs/internal/export"
	"redditlogs/internal/logs"
	"redditlogs/internal/reddit"
	"redditlogs/internal/structs"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var Version = "devel"

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

// NewCommand builds the root command. Flag parsing stops at the first
// subreddit name, so every later token is a subreddit even if it starts with
// a dash.
func NewCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reddit-logs [flags] subreddit...",
		Short:         "Print subreddit moderation logs as JSON lines",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, stdout)
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.String("action", "", "action to fetch (default is all)")
	flags.Float64("days", 0, "number of days to fetch")
	flags.String("mod", "", "moderator to fetch (default is all)")
	flags.String("site", "", "praw.ini site name (default $"+config.SiteEnvVar+")")
	flags.Bool("unicode", false, "print Unicode escapes for strings")
	flags.String("praw-ini", "", "read credentials from this praw.ini only")
	flags.String("config", "", "config file (default reddit-logs.yaml)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	return cmd
}

func run(cmd *cobra.Command, subreddits []string, stdout io.Writer) error {
	ctx := cmd.Context()

	conf, err := config.InitConfig(cmd.Flags())
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	logs.SetLevel(conf.LogLevel)

	creds, err := config.ResolveCredentials(conf.Site, conf.PrawIni)
	if err != nil {
		return err
	}

	session, err := reddit.NewSession(ctx, creds, reddit.Options{
		Timeout:           conf.Timeout,
		RequestsPerMinute: conf.RequestsPerMinute,
		PageSize:          conf.PageSize,
	})
	if err != nil {
		return err
	}

	criteria := structs.NewFilterCriteria(conf.Action, conf.Mod, conf.Days, time.Now())
	source := func(subreddit string, c structs.FilterCriteria) export.Feed {
		return session.ModLog(subreddit, c)
	}

	return export.NewExporter(source, criteria, stdout, conf.Unicode).Run(ctx, subreddits)
}

// Execute runs the command and maps its outcome to an exit status: 1 for an
// interrupt or a fatal site error, 2 for bad usage, 0 otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logs.SetOutput(stderr)

	cmd := NewCommand(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, new(usageError)):
		fmt.Fprintln(stderr, cmd.UsageString())
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitUsage
	case ctx.Err() != nil || errors.Is(err, export.ErrInterrupted):
		logrus.Error("received SIGINT from keyboard, stopping")
		return ExitFailure
	default:
		logrus.Errorf("site error: %v", err)
		return ExitFailure
	}
}
