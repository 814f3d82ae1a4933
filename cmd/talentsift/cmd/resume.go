package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/store"
)

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Inspect or remove stored resumes",
	}
	cmd.AddCommand(newResumeShowCmd())
	cmd.AddCommand(newResumeDeleteCmd())
	return cmd
}

// resumeDetail is the show subcommand's JSON shape.
type resumeDetail struct {
	*store.Resume
	Headline string             `json:"headline"`
	Skills   []store.SkillEntry `json:"skills"`
}

func newResumeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resume-id>",
		Short: "Print one candidate's redacted profile and skill ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			core, err := a.store.GetResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			skills, err := a.store.SkillsForResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resumeDetail{
				Resume:   core,
				Headline: core.Headline(),
				Skills:   skills,
			})
		},
	}
}

func newResumeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resume-id>",
		Short: "Delete a resume and all its derived data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			// Surface a not-found error instead of deleting nothing.
			if _, err := a.store.GetResume(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := a.store.DeleteResume(cmd.Context(), args[0]); err != nil {
				return err
			}
			if a.bleve != nil {
				if err := a.bleve.DeleteResume(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted resume %s\n", args[0])
			return nil
		},
	}
}
