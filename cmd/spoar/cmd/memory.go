package cmd

import (
	"fmt"
	"time"

	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/stringutils"
	"github.com/habiliai/spoar/memory"
	"github.com/spf13/cobra"
)

var errMemoryDisabled = errors.New("memory is disabled; set OPENAI_API_KEY to enable embeddings")

func newMemoryCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and maintain the agent memory",
	}
	cmd.AddCommand(newMemoryListCmd(flags), newMemoryDeleteCmd(flags), newMemoryCleanupCmd(flags))
	return cmd
}

func newMemoryListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			svc := r.Memory()
			if svc == nil {
				return errMemoryDisabled
			}
			records, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range records {
				fmt.Fprintf(out, "%s %s\n  %s\n", dimStyle.Render(rec.ID), rec.CreatedAt.Format(time.DateTime), stringutils.Ellipsize(rec.Content, 120))
			}
			fmt.Fprintln(out, noticeStyle.Render(fmt.Sprintf("%d memories", len(records))))
			return nil
		},
	}
}

func newMemoryDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete memories by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			svc := r.Memory()
			if svc == nil {
				return errMemoryDisabled
			}
			if err := svc.Delete(cmd.Context(), args...); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), agentStyle.Render(fmt.Sprintf("deleted %d memories", len(args))))
			return nil
		},
	}
}

func newMemoryCleanupCmd(flags *rootFlags) *cobra.Command {
	var (
		live      bool
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Find near-duplicate memories and keep only the newest of each group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold <= 0 || threshold > 1 {
				return errors.Errorf("threshold must be within (0, 1], got %.2f", threshold)
			}

			r, err := flags.newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer r.Close()

			svc := r.Memory()
			if svc == nil {
				return errMemoryDisabled
			}

			report, err := svc.Cleanup(cmd.Context(), threshold, !live)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "analyzed %d memories (threshold %.2f)\n", report.Total, threshold)
			for i, group := range report.Groups {
				fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("group %d", i+1)))
				for _, rec := range group {
					fmt.Fprintf(out, "  %s %s %s\n", dimStyle.Render(rec.ID), rec.CreatedAt.Format(time.DateTime), stringutils.Ellipsize(rec.Content, 80))
				}
			}

			if report.DryRun {
				fmt.Fprintln(out, noticeStyle.Render(fmt.Sprintf("dry run: %d memories would be deleted; rerun with --live to delete", len(report.Deleted))))
			} else {
				fmt.Fprintln(out, agentStyle.Render(fmt.Sprintf("deleted %d memories", len(report.Deleted))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "delete duplicates instead of reporting them")
	cmd.Flags().Float64Var(&threshold, "threshold", memory.DefaultDedupThreshold, "similarity at which memories count as duplicates")
	return cmd
}
