package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskvault/internal/models"
	"taskvault/internal/portal"
	"taskvault/internal/suggest"
)

var (
	flagEmail string
	flagOut   string
	flagBoard string
	flagInput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the analytics report for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		name, err := apiClient().DownloadReport(cmd.Context(), flagEmail, &buf)
		if err != nil {
			return err
		}
		out := flagOut
		if out == "" {
			out = name
		}
		if out == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report saved to %s\n", out)
		return nil
	},
}

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Manage boards",
}

func requireEmail() error {
	if strings.TrimSpace(flagEmail) == "" {
		return fmt.Errorf("--email is required")
	}
	return nil
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEmail(); err != nil {
			return err
		}
		boards, err := apiClient().ListBoards(cmd.Context(), flagEmail)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCREATED")
		for _, b := range boards {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Title, humanize.Time(b.CreatedAt))
		}
		return w.Flush()
	},
}

var boardsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a board",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEmail(); err != nil {
			return err
		}
		b, err := apiClient().CreateBoard(cmd.Context(), strings.Join(args, " "), flagEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created board %s (%s)\n", b.ID, b.Title)
		return nil
	},
}

var boardsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a board and its todos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().DeleteBoard(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted board %s\n", args[0])
		return nil
	},
}

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "Manage a board's todos",
}

var todosListCmd = &cobra.Command{
	Use:   "list <board-id>",
	Short: "List todos with their lock state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := portal.OpenBoard(cmd.Context(), apiClient(), args[0], portal.BoardOptions{})
		if err != nil {
			return err
		}
		defer s.Close()
		printTodos(cmd, s)
		return nil
	},
}

var todosAddCmd = &cobra.Command{
	Use:   "add <board-id> <task>",
	Short: "Add a task and the sub-tasks its text implies",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := portal.OpenBoard(cmd.Context(), apiClient(), args[0], portal.BoardOptions{})
		if err != nil {
			return err
		}
		defer s.Close()
		created, err := s.Add(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d todo(s)\n", len(created))
		printTodos(cmd, s)
		return nil
	},
}

var todosToggleCmd = &cobra.Command{
	Use:   "toggle <board-id> <todo-id>",
	Short: "Flip a todo between pending and completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := portal.OpenBoard(cmd.Context(), apiClient(), args[0], portal.BoardOptions{})
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.Toggle(cmd.Context(), args[1]); err != nil {
			return err
		}
		printTodos(cmd, s)
		return nil
	},
}

func printTodos(cmd *cobra.Command, s *portal.BoardSession) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "# %s\n", s.Board().Title)
	for _, t := range s.Todos() {
		mark := "[ ]"
		switch {
		case t.Locked:
			mark = "[#]"
		case t.Status == models.StatusCompleted:
			mark = "[x]"
		}
		task := t.Task
		if t.IsSubTask {
			task = "  " + task
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", mark, task, t.ID)
	}
	_ = w.Flush()
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show task suggestions for a board and partial input",
	RunE: func(cmd *cobra.Command, args []string) error {
		api := apiClient()
		view, err := api.ViewBoard(cmd.Context(), flagBoard)
		if err != nil {
			return err
		}
		engine := &suggest.Engine{Remote: api, Timeout: cfg.SuggestTimeout}
		for _, s := range engine.Suggest(cmd.Context(), view.Board.Title, flagInput) {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&flagEmail, "email", "", "Owner email")
	reportCmd.Flags().StringVar(&flagOut, "out", "", "Output file, - for stdout (default: server supplied name)")
	_ = reportCmd.MarkFlagRequired("email")

	boardsCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "Owner email")
	boardsCmd.AddCommand(boardsListCmd, boardsCreateCmd, boardsDeleteCmd)

	todosCmd.AddCommand(todosListCmd, todosAddCmd, todosToggleCmd)

	suggestCmd.Flags().StringVar(&flagBoard, "board", "", "Board id")
	suggestCmd.Flags().StringVar(&flagInput, "input", "", "Partial task text")
	_ = suggestCmd.MarkFlagRequired("board")
}
