package command

import (
	"fmt"
	"strconv"

	"cookbook/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var inCartColor = color.New(color.FgHiBlack)

var groceryCmd = &cobra.Command{
	Use:     "grocery",
	Aliases: []string{"g"},
	Short:   "Manage the grocery list",
}

var listGroceryCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the grocery list, items still to buy first",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}

		var inCart *bool
		if cmd.Flags().Changed("in-cart") {
			v, _ := cmd.Flags().GetBool("in-cart")
			inCart = &v
		}
		items, err := httpClient.ListGroceries(cmd.Context(), inCart)
		if err != nil {
			return fmt.Errorf("failed to list groceries: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "The grocery list is empty.")
			return nil
		}
		for _, it := range items {
			box := "[ ]"
			if it.InCart {
				box = "[x]"
			}
			qty := ""
			if it.Quantity != nil {
				qty = strconv.FormatFloat(*it.Quantity, 'f', -1, 64)
				if it.Unit != "" {
					qty += " " + it.Unit
				}
			}
			optional := ""
			if it.IsOptional {
				optional = " (optional)"
			}
			line := fmt.Sprintf("%s %-30s %s%s", box, it.Name, qty, optional)
			if it.InCart {
				inCartColor.Fprintln(out, line)
				continue
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var addGroceryCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an item to the grocery list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := dto.GroceryItemInput{Name: &args[0]}
		if cmd.Flags().Changed("quantity") {
			q, _ := cmd.Flags().GetFloat64("quantity")
			in.Quantity = &q
		}
		if cmd.Flags().Changed("unit-id") {
			u, _ := cmd.Flags().GetInt64("unit-id")
			in.UnitID = &u
		}
		if optional, _ := cmd.Flags().GetBool("optional"); optional {
			in.IsOptional = &optional
		}

		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}
		item, err := httpClient.AddGrocery(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (ID %d)\n", item.Name, item.ID)
		return nil
	},
}

var fromDishCmd = &cobra.Command{
	Use:   "from-dish [dish id]",
	Short: "Put every ingredient of a dish on the list",
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
		items, err := httpClient.AddDishToGroceries(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to add dish: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d item(s) on the list from dish %d\n", len(items), id)
		return nil
	},
}

var markAllCmd = &cobra.Command{
	Use:   "check-all",
	Short: "Mark every item as in the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}
		n, err := httpClient.MarkAllInCart(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d item(s) marked in cart\n", n)
		return nil
	},
}

var clearCartCmd = &cobra.Command{
	Use:   "clear-cart",
	Short: "Remove every item already in the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := authedClient(cmd.Context())
		if err != nil {
			return err
		}
		n, err := httpClient.ClearCart(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d item(s) removed\n", n)
		return nil
	},
}

func init() {
	groceryCmd.AddCommand(listGroceryCmd, addGroceryCmd, fromDishCmd, markAllCmd, clearCartCmd)

	listGroceryCmd.Flags().Bool("in-cart", false, "Only items in (true) or not in (false) the cart")

	addGroceryCmd.Flags().Float64P("quantity", "q", 0, "Quantity to buy")
	addGroceryCmd.Flags().Int64("unit-id", 0, "Unit of the quantity")
	addGroceryCmd.Flags().Bool("optional", false, "Mark the item optional")
}
