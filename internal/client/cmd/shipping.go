package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

func newShippingCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "shipping", Short: "Quotes, cart and checkout"}

	var quote models.QuoteRequest
	var quoteInsurance float64
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Calculate shipping prices for a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("insurance") {
				quote.InsuranceValue = &quoteInsurance
			}
			return postJSON(*serverURL, "/api/shipping/quote", quote)
		},
	}
	quoteCmd.Flags().StringVar(&quote.ToCEP, "to-cep", "", "Destination CEP")
	quoteCmd.Flags().StringVar(&quote.ProductID, "product", "", "Product id")
	quoteCmd.Flags().IntVar(&quote.Quantity, "quantity", 1, "Quantity")
	quoteCmd.Flags().Float64Var(&quoteInsurance, "insurance", 0, "Declared value (defaults to price*quantity)")
	_ = quoteCmd.MarkFlagRequired("to-cep")
	_ = quoteCmd.MarkFlagRequired("product")
	cmd.AddCommand(quoteCmd)

	var create models.CreateShipmentRequest
	var createInsurance float64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a shipment to the provider cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("insurance") {
				create.InsuranceValue = &createInsurance
			}
			return postJSON(*serverURL, "/api/shipping/create", create)
		},
	}
	createCmd.Flags().StringVar(&create.ToCEP, "to-cep", "", "Destination CEP")
	createCmd.Flags().StringVar(&create.ProductID, "product", "", "Product id")
	createCmd.Flags().IntVar(&create.Quantity, "quantity", 1, "Quantity")
	createCmd.Flags().IntVar(&create.ServiceID, "service", 0, "Shipping service id from a quote")
	createCmd.Flags().StringVar(&create.ReceiverName, "name", "", "Receiver name")
	createCmd.Flags().StringVar(&create.ReceiverPhone, "phone", "", "Receiver phone")
	createCmd.Flags().StringVar(&create.ReceiverDocument, "document", "", "Receiver CPF/CNPJ")
	createCmd.Flags().StringVar(&create.ReceiverEmail, "email", "", "Receiver email")
	createCmd.Flags().StringVar(&create.ReceiverAddress, "address", "", "Receiver street")
	createCmd.Flags().StringVar(&create.ReceiverNumber, "number", "", "Receiver street number")
	createCmd.Flags().StringVar(&create.ReceiverComplement, "complement", "", "Receiver complement")
	createCmd.Flags().StringVar(&create.ReceiverDistrict, "district", "", "Receiver district")
	createCmd.Flags().StringVar(&create.ReceiverCity, "city", "", "Receiver city")
	createCmd.Flags().StringVar(&create.ReceiverState, "state", "", "Receiver state abbreviation")
	createCmd.Flags().Float64Var(&createInsurance, "insurance", 0, "Declared value (defaults to price*quantity)")
	_ = createCmd.MarkFlagRequired("to-cep")
	_ = createCmd.MarkFlagRequired("product")
	_ = createCmd.MarkFlagRequired("service")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("phone")
	_ = createCmd.MarkFlagRequired("document")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "cart",
		Short: "List the provider cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(*serverURL, "/api/shipping/cart")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "checkout [order-id...]",
		Short: "Pay for cart orders (all of them when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON(*serverURL, "/api/shipping/checkout", models.CheckoutRequest{Orders: args})
		},
	})

	return cmd
}
