package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smartflow-backend/internal/app"
	"smartflow-backend/internal/config"
	"smartflow-backend/internal/tasks"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			category, _ := cmd.Flags().GetString("category")

			p, err := tasks.ParsePriority(priority)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App, _ *config.Config) error {
				v, err := a.Dispatch(ctx, app.AddTask{
					Text:     strings.Join(args, " "),
					Priority: p,
					Category: category,
				})
				if err != nil {
					return err
				}
				renderView(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}

	cmd.Flags().StringP("priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringP("category", "c", "", "Category (default General)")

	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			f, err := tasks.ParseFilter(filter)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App, _ *config.Config) error {
				renderView(cmd.OutOrStdout(), a.ViewWith(f))
				return nil
			})
		},
	}

	cmd.Flags().StringP("filter", "f", "all", "Filter (all, active, completed)")

	return cmd
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndRender(cmd, app.ToggleTask{ID: args[0]})
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAndRender(cmd, app.DeleteTask{ID: args[0]})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App, _ *config.Config) error {
				renderStats(cmd.OutOrStdout(), a.View().Stats)
				return nil
			})
		},
	}
}

func dispatchAndRender(cmd *cobra.Command, c app.Command) error {
	return withApp(cmd, func(ctx context.Context, a *app.App, _ *config.Config) error {
		v, err := a.Dispatch(ctx, c)
		if err != nil {
			return err
		}
		renderView(cmd.OutOrStdout(), v)
		return nil
	})
}

func renderView(w io.Writer, v app.View) {
	if len(v.Tasks) == 0 {
		fmt.Fprintln(w, emptyMessage(v.Filter))
	}
	for _, t := range v.Tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %-6s %-12s %s  (%s)\n", mark, t.Priority, t.Category, t.Text, t.ID)
	}
	fmt.Fprintln(w)
	renderStats(w, v.Stats)
}

func renderStats(w io.Writer, s tasks.Stats) {
	fmt.Fprintf(w, "%d/%d completed, %d active (%d%%)\n", s.Completed, s.Total, s.Active, s.Progress)
}

func emptyMessage(f tasks.Filter) string {
	if f == tasks.FilterAll {
		return "No tasks."
	}
	return fmt.Sprintf("No %s tasks.", f)
}
