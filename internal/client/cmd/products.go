package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

func newProductsCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage the product catalog"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(*serverURL, fmt.Sprintf("/api/products?limit=%d", limit))
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum number of products")
	cmd.AddCommand(list)

	var p models.Product
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON(*serverURL, "/api/products", p)
		},
	}
	add.Flags().StringVar(&p.Name, "name", "", "Product name")
	add.Flags().Float64Var(&p.Price, "price", 0, "Unit price")
	add.Flags().Float64Var(&p.WeightKg, "weight", 0, "Weight in kg")
	add.Flags().Float64Var(&p.WidthCm, "width", 0, "Width in cm")
	add.Flags().Float64Var(&p.HeightCm, "height", 0, "Height in cm")
	add.Flags().Float64Var(&p.LengthCm, "length", 0, "Length in cm")
	add.Flags().StringVar(&p.SKU, "sku", "", "SKU")
	add.Flags().StringVar(&p.Image, "image", "", "Image URL")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("price")
	cmd.AddCommand(add)

	return cmd
}
