package command

import (
	"fmt"

	"cookbook/cmd/cli/command/client"
	"cookbook/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// catalog.go: units of measure and ingredients.

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Manage units of measure",
}

var listUnitCmd = &cobra.Command{
	Use:   "list",
	Short: "List units",
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := client.NewHTTPClient(apiURL).ListUnits(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list units: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, u := range units {
			fmt.Fprintf(out, "%4d  %-20s %s\n", u.ID, u.Name, u.Abbreviation)
		}
		return nil
	},
}

var addUnitCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abbr, _ := cmd.Flags().GetString("abbreviation")

		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}
		u, err := httpClient.CreateUnit(cmd.Context(), dto.UnitInput{Name: args[0], Abbreviation: abbr})
		if err != nil {
			return fmt.Errorf("failed to add unit: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Unit %q added (ID %d, abbreviation %q)\n", u.Name, u.ID, u.Abbreviation)
		return nil
	},
}

var ingredientCmd = &cobra.Command{
	Use:   "ingredient",
	Short: "Browse ingredients",
}

var listIngredientCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients with the number of dishes using each",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		list, err := client.NewHTTPClient(apiURL).ListIngredients(cmd.Context(), search)
		if err != nil {
			return fmt.Errorf("failed to list ingredients: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, ing := range list {
			fmt.Fprintf(out, "%4d  %-30s %d dish(es)\n", ing.ID, ing.Name, ing.DishCount)
		}
		return nil
	},
}

func init() {
	unitCmd.AddCommand(listUnitCmd, addUnitCmd)
	addUnitCmd.Flags().StringP("abbreviation", "a", "", "Short form; derived from the name when omitted")

	ingredientCmd.AddCommand(listIngredientCmd)
	listIngredientCmd.Flags().StringP("search", "s", "", "Only ingredients whose name contains this text")
}
