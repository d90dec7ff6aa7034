package command

import (
	"fmt"
	"strconv"
	"strings"

	"cookbook/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var dishCmd = &cobra.Command{
	Use:   "dish",
	Short: "Browse dishes",
}

var listDishCmd = &cobra.Command{
	Use:   "list",
	Short: "List dishes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		maxCook, _ := cmd.Flags().GetInt("max-cook-time")

		dishes, err := client.NewHTTPClient(apiURL).ListDishes(cmd.Context(), search, maxCook)
		if err != nil {
			return fmt.Errorf("failed to list dishes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(dishes) == 0 {
			fmt.Fprintln(out, "No dishes found.")
			return nil
		}
		fmt.Fprintf(out, "Found %d dish(es):\n\n", len(dishes))
		for _, d := range dishes {
			fmt.Fprintf(out, "%4d  %-40s %3d min (prep %d, cook %d)\n", d.ID, d.Name, d.TotalTime, d.PrepTime, d.CookTime)
		}
		return nil
	},
}

var showDishCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a dish with its ingredients and steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid dish ID: %w", err)
		}

		d, err := client.NewHTTPClient(apiURL).GetDish(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get dish: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, d.Name)
		fmt.Fprintln(out, strings.Repeat("=", len(d.Name)))
		if d.Description != "" {
			fmt.Fprintln(out, d.Description)
		}
		fmt.Fprintf(out, "Prep %d min, cook %d min, total %d min\n", d.PrepTime, d.CookTime, d.TotalTime)

		fmt.Fprintln(out, "\nIngredients:")
		for _, line := range d.Ingredients {
			fmt.Fprintf(out, "  - %s %s %s\n", strconv.FormatFloat(line.Quantity, 'f', -1, 64), line.Unit, line.Ingredient)
		}
		fmt.Fprintln(out, "\nSteps:")
		for _, s := range d.Steps {
			fmt.Fprintf(out, "  %d. %s\n", s.StepNumber, s.Instruction)
		}
		return nil
	},
}

var deleteDishCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a dish and its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid dish ID: %w", err)
		}
		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := httpClient.DeleteDish(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete dish: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dish %d deleted\n", id)
		return nil
	},
}

func init() {
	dishCmd.AddCommand(listDishCmd, showDishCmd, deleteDishCmd)

	listDishCmd.Flags().StringP("search", "s", "", "Only dishes whose name contains this text")
	listDishCmd.Flags().Int("max-cook-time", 0, "Only dishes that cook in at most this many minutes")
}
