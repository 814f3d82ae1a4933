package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved searches",
		Long: `Manage saved searches.

A saved search stores a query's skills and filters under a name so it
can be re-run as the corpus grows.

Examples:
  talentsift search --skills go,kafka --save backend-sg
  talentsift sessions list
  talentsift sessions run backend-sg
  talentsift sessions delete backend-sg`,
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsRunCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved searches, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			infos, err := mgr.List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved searches.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSKILLS\tLAST USED\tRUNS")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					info.Name,
					joinSkills(info.Skills),
					info.LastUsed.Format(time.DateTime),
					info.RunCount)
			}
			return w.Flush()
		},
	}
}

func newSessionsRunCmd() *cobra.Command {
	var (
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Re-run a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			saved, err := mgr.Touch(args[0])
			if err != nil {
				return err
			}

			resp, err := a.engine.Search(cmd.Context(), saved.Request)
			if err != nil {
				return err
			}
			return renderResponse(cmd, resp, format, verbose)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show retrieval detail")
	return cmd
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted saved search %q\n", args[0])
			return nil
		},
	}
}

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return "-"
	}
	const maxShown = 4
	if len(skills) <= maxShown {
		return fmt.Sprintf("%v", skills)
	}
	return fmt.Sprintf("%v +%d", skills[:maxShown], len(skills)-maxShown)
}
