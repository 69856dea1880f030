package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

func addCmd(flags *rootFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Record a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				parsed, err := model.ParseDay(date)
				if err != nil {
					return err
				}
				day = parsed
			}

			_, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			task, err := session.AddTask(cmd.Context(), strings.Join(args, " "), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", task.ID, model.FormatDay(task.Date))
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "task date (YYYY-MM-DD), defaults to today")
	return cmd
}

func listCmd(flags *rootFlags) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := model.ParseStatusFilter(status)
			if err != nil {
				return err
			}

			_, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			tasks, err := session.Tasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, task := range tasks {
				mark := " "
				if task.Completed() {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] %s  %s  %s\n", mark, model.FormatDay(task.Date), task.ID, task.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "all", "filter: all, pending or completed")
	return cmd
}

func doneCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			task, err := session.SetStatus(cmd.Context(), args[0], model.StatusCompleted)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %q\n", task.Description)
			return nil
		},
	}
}

func rmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := session.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
