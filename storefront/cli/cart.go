package cli

import (
	"github.com/spf13/cobra"

	"github.com/yashrajoria/course-store/storefront/cart"
)

func newCartCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return showCart(app())
		},
	}
	cmd.AddCommand(
		newCartAddCmd(app),
		newCartRemoveCmd(app),
		&cobra.Command{
			Use:   "list",
			Short: "List cart items and the total",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return showCart(app())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				a := app()
				if err := a.Cart.Clear(); err != nil {
					return err
				}
				a.Session.RefreshUI()
				a.View.Header()
				return nil
			},
		},
		&cobra.Command{
			Use:   "total",
			Short: "Print the cart total",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				a := app()
				a.Refresh()
				a.View.Message("Total: %s", a.View.Money(a.Cart.Total()))
				return nil
			},
		},
	)
	return cmd
}

func newCartAddCmd(app func() *App) *cobra.Command {
	var item cart.Item
	cmd := &cobra.Command{
		Use:   "add <course-id>",
		Short: "Add a course to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := app()
			item.ID = args[0]
			if err := a.Cart.Add(item); err != nil {
				return err
			}
			a.Refresh()
			return nil
		},
	}
	cmd.Flags().StringVar(&item.Title, "title", "", "course title")
	cmd.Flags().Float64Var(&item.Price, "price", 0, "course price")
	cmd.Flags().StringVar(&item.Image, "image", "", "course image URL")
	return cmd
}

func newCartRemoveCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <course-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a course from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := app()
			if err := a.Cart.Remove(args[0]); err != nil {
				return err
			}
			a.Refresh()
			return nil
		},
	}
}

func showCart(a *App) error {
	a.Refresh()
	a.View.Cart(a.Cart.Items(), a.Cart.Total())
	return nil
}
