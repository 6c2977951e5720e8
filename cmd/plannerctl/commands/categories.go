package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/benvon/day-planner/internal/app"
	"github.com/benvon/day-planner/internal/models"
	"github.com/benvon/day-planner/internal/validation"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage task categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, a *app.App) error {
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tCOLOR")
					for _, c := range a.Categories.GetCategories() {
						fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Color)
					}
					return w.Flush()
				})
			},
		},
		newCategoryAddCmd(run),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a category (tasks keep their reference)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, func(ctx context.Context, a *app.App) error {
					if _, ok := a.Categories.GetCategory(args[0]); !ok {
						return fmt.Errorf("category %q not found", args[0])
					}
					a.Categories.DeleteCategory(args[0])
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func newCategoryAddCmd(run runner) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := validation.SanitizeText(args[0])
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("category name must not be empty")
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				c := a.Categories.AddCategory(models.CategoryInput{Name: name, Color: color})
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "#C7CEEA", "Display color")
	return cmd
}
