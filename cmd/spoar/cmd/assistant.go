package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const goodbye = "Goodbye! Thanks for using the automation assistant."

func newAssistantCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "assistant",
		Short: "Find and build an automation for your business, step by step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := flags.newRuntime(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			a := r.NewAssistant()
			fmt.Fprintln(out, headerStyle.Render("Automation assistant"))
			fmt.Fprintln(out, "Tell me about your business! (e.g. 'I run a newsletter for dog owners')")

			for input := range lines(ctx, cmd.InOrStdin(), out, userStyle.Render("You: ")) {
				reply, err := a.Respond(ctx, input)
				if err != nil {
					fmt.Fprintln(out, errorStyle.Render("error:"), err)
					continue
				}
				if reply.Exit {
					break
				}

				fmt.Fprintf(out, "%s %s\n", agentStyle.Render(fmt.Sprintf("Agent [%s]:", reply.Phase)), reply.Text)
				if reply.Repeated {
					fmt.Fprintln(out, noticeStyle.Render("I notice I've been repeating myself. Let me step back."))
					break
				}
			}

			fmt.Fprintln(out, noticeStyle.Render(goodbye))
			return nil
		},
	}
}
