package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/habiliai/spoar"
	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/mylog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile   string
	agentFile    string
	logLevel     string
	logHandler   string
	traceVerbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "spoar",
		Short:         "SENSE, PLAN, ACT, OBSERVE, REFLECT agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVarP(&flags.agentFile, "agent", "a", "", "agent definition YAML")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logHandler, "log-handler", "", "log handler (default, json)")
	cmd.PersistentFlags().BoolVar(&flags.traceVerbose, "trace-verbose", false, "keep long attributes in span logs")

	cmd.AddCommand(
		newAskCmd(flags),
		newChatCmd(flags),
		newAssistantCmd(flags),
		newMemoryCmd(flags),
	)

	return cmd
}

func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.LogLevel = f.logLevel
	}
	if f.logHandler != "" {
		cfg.Log.LogHandler = f.logHandler
	}
	return cfg, nil
}

func (f *rootFlags) newRuntime(ctx context.Context) (*spoar.Runtime, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	opts := []spoar.Option{
		spoar.WithConfig(cfg),
		spoar.WithLogger(mylog.NewLogger(cfg.Log.LogLevel, cfg.Log.LogHandler)),
		spoar.WithTraceVerbose(f.traceVerbose),
	}
	if f.agentFile != "" {
		def, err := config.LoadAgentFromFile(f.agentFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, spoar.WithAgent(def))
	}

	r, err := spoar.New(ctx, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create runtime")
	}
	return r, nil
}

// lines yields trimmed, non-empty input lines until EOF or ctx is done.
func lines(ctx context.Context, in io.Reader, out io.Writer, prompt string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(in)
		for {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprint(out, prompt)
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
