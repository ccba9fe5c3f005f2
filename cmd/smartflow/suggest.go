package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"smartflow-backend/internal/app"
	"smartflow-backend/internal/config"
	"smartflow-backend/internal/suggestions"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the AI for task suggestions",
		Long: `Fetch 3-5 suggestions based on the current tasks and print them.
With --accept, the listed indexes are added as tasks right away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accept, _ := cmd.Flags().GetIntSlice("accept")

			return withApp(cmd, func(ctx context.Context, a *app.App, _ *config.Config) error {
				v, err := a.Dispatch(ctx, app.FetchSuggestions{})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				renderSuggestions(out, v.Suggestions)

				for _, idx := range acceptOrder(accept) {
					before := len(v.Suggestions)
					v, err = a.Dispatch(ctx, app.AcceptSuggestion{Index: idx})
					if err != nil {
						return err
					}
					if len(v.Suggestions) == before {
						fmt.Fprintf(out, "Skipped %d: no such suggestion\n", idx)
					}
				}
				if len(accept) > 0 {
					fmt.Fprintln(out)
					renderView(out, v)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntSliceP("accept", "a", nil, "Accept suggestions by index")

	return cmd
}

// acceptOrder dedupes and sorts indexes high to low, since each accept
// shifts the entries after it.
func acceptOrder(idx []int) []int {
	out := slices.Clone(idx)
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}

func renderSuggestions(w io.Writer, list []suggestions.Suggestion) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return
	}
	for i, s := range list {
		fmt.Fprintf(w, "%d. %s [%s, %s]\n", i, s.Text, s.Priority, s.Category)
	}
}
