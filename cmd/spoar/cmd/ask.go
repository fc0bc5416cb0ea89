package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/habiliai/spoar"
	"github.com/habiliai/spoar/agent"
	"github.com/habiliai/spoar/assistant"
	"github.com/habiliai/spoar/errors"
	"github.com/spf13/cobra"
)

func newAskCmd(flags *rootFlags) *cobra.Command {
	var speak bool
	cmd := &cobra.Command{
		Use:   "ask <goal>",
		Short: "Run the agent once and print its answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			res := ask(cmd.Context(), cmd.OutOrStdout(), r, strings.Join(args, " "))
			if speak && res.Status == agent.StatusCompleted {
				path, err := r.Speak(cmd.Context(), res.Answer)
				if err != nil {
					return errors.Wrapf(err, "failed to speak the answer")
				}
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("audio saved to "+path))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&speak, "speak", false, "synthesize the answer to an audio file")
	return cmd
}

func newChatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively until an exit word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := flags.newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(r.Agent().Name), dimStyle.Render("tools: "+strings.Join(r.Registry().Names(), ", ")))

			for goal := range lines(ctx, cmd.InOrStdin(), out, userStyle.Render("You: ")) {
				if assistant.IsExitCommand(goal) {
					break
				}
				ask(ctx, out, r, goal)
			}
			fmt.Fprintln(out, noticeStyle.Render("Goodbye!"))
			return nil
		},
	}
}

// ask runs one goal, prints the answer and saves the transcript.
func ask(ctx context.Context, out io.Writer, r *spoar.Runtime, goal string) agent.Result {
	res := r.Ask(ctx, goal)

	style := agentStyle
	if res.Status != agent.StatusCompleted {
		style = noticeStyle
	}
	fmt.Fprintln(out, style.Render("Agent:"), res.Answer)
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%s in %d iteration(s)", res.Status, res.Iterations)))

	if path, err := r.SaveTranscript(res); err != nil {
		fmt.Fprintln(out, errorStyle.Render("failed to save transcript:"), err)
	} else {
		fmt.Fprintln(out, dimStyle.Render("transcript saved to "+path))
	}
	return res
}
