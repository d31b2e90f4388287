package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"kvartal/internal/models"
	"kvartal/internal/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage shop categories",
}

var categoryDescription string

var categoryCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := services.CreateCategory(args[0], categoryDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created category %d %q\n", c.ID, c.Name)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := services.ListCategories()
		if err != nil {
			return err
		}
		return printCategories(cmd.OutOrStdout(), categories)
	},
}

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage shop products",
}

var (
	productCategory    uint
	productPrice       string
	productImage       string
	productDescription string
)

var productCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Add a product",
	Long:  `Add a product. --image copies a local picture into the media dir, shrunk to fit 800x800.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := decimal.NewFromString(productPrice)
		if err != nil {
			return fmt.Errorf("price %q: %w", productPrice, err)
		}
		p, err := services.CreateProduct(services.ProductInput{
			Name:        args[0],
			Description: productDescription,
			CategoryID:  productCategory,
			Price:       price,
			ImagePath:   productImage,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created product %d %q at %s\n", p.ID, p.Name, p.Price.StringFixed(2))
		return nil
	},
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter *uint
		if cmd.Flags().Changed("category") {
			filter = &productCategory
		}
		products, err := services.ListProducts(filter)
		if err != nil {
			return err
		}
		return printProducts(cmd.OutOrStdout(), products)
	},
}

func init() {
	categoryCreateCmd.Flags().StringVar(&categoryDescription, "description", "", "category description")
	categoryCmd.AddCommand(categoryCreateCmd)
	categoryCmd.AddCommand(categoryListCmd)

	productCreateCmd.Flags().UintVar(&productCategory, "category", 0, "category id (required)")
	productCreateCmd.Flags().StringVar(&productPrice, "price", "", "price, e.g. 19.99 (required)")
	productCreateCmd.Flags().StringVar(&productImage, "image", "", "path to a product picture")
	productCreateCmd.Flags().StringVar(&productDescription, "description", "", "product description")
	_ = productCreateCmd.MarkFlagRequired("category")
	_ = productCreateCmd.MarkFlagRequired("price")
	productListCmd.Flags().UintVar(&productCategory, "category", 0, "only products of this category")
	productCmd.AddCommand(productCreateCmd)
	productCmd.AddCommand(productListCmd)
}

func printCategories(out io.Writer, categories []models.Category) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return w.Flush()
}

func printProducts(out io.Writer, products []models.Product) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category.Name, p.Price.StringFixed(2), p.Image)
	}
	return w.Flush()
}
