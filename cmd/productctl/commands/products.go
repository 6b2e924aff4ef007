package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/fairyhunter13/product-console/internal/model"
)

const emptyState = "No products found. Add your first product!"

// ProductListAction prints the product table.
func ProductListAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	tok, err := ac.Token(ctx)
	if err != nil {
		return err
	}
	return ac.printProducts(ctx, tok)
}

func (ac *AppContext) printProducts(ctx context.Context, tok string) error {
	products, err := ac.Client.ListProducts(ctx, tok)
	if err != nil {
		return err
	}
	return renderProductsTable(ac.Out, products)
}

func renderProductsTable(w io.Writer, products []model.Product) error {
	if len(products) == 0 {
		fmt.Fprintln(w, emptyState)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Price", "Stock", "Description")
	for _, p := range products {
		if err := table.Append(
			string(p.ID),
			p.Name,
			p.PriceText(),
			p.StockText(),
			p.Description,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// ProductCreateAction creates a product and prints the refreshed list.
func ProductCreateAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	tok, err := ac.Token(ctx)
	if err != nil {
		return err
	}
	p, err := model.ProductForm{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Price:       cmd.String("price"),
		Stock:       cmd.String("stock"),
	}.Parse()
	if err != nil {
		return err
	}
	if err := ac.Client.CreateProduct(ctx, tok, p); err != nil {
		return err
	}
	return ac.printProducts(ctx, tok)
}

// ProductUpdateAction edits a product. Flags left unset keep their current values.
func ProductUpdateAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	tok, err := ac.Token(ctx)
	if err != nil {
		return err
	}
	id := model.ID(cmd.String("id"))
	current, found, err := ac.Client.FindProduct(ctx, tok, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("product %s not found", id)
	}
	form := model.FormFromProduct(current)
	for flag, field := range map[string]*string{
		"name":        &form.Name,
		"description": &form.Description,
		"price":       &form.Price,
		"stock":       &form.Stock,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}
	p, err := form.Parse()
	if err != nil {
		return err
	}
	if err := ac.Client.UpdateProduct(ctx, tok, p); err != nil {
		return err
	}
	return ac.printProducts(ctx, tok)
}

// ProductDeleteAction deletes a product after confirmation.
func ProductDeleteAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	tok, err := ac.Token(ctx)
	if err != nil {
		return err
	}
	id := model.ID(cmd.String("id"))
	if !cmd.Bool("yes") {
		current, found, err := ac.Client.FindProduct(ctx, tok, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("product %s not found", id)
		}
		ok, err := confirm(ac, fmt.Sprintf("Are you sure you want to delete %q?", current.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ac.Out, "Aborted")
			return nil
		}
	}
	if err := ac.Client.DeleteProduct(ctx, tok, id); err != nil {
		return err
	}
	return ac.printProducts(ctx, tok)
}

func confirm(ac *AppContext, question string) (bool, error) {
	fmt.Fprintf(ac.Out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(ac.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// CheckAction verifies the API is reachable with the stored token.
func CheckAction(ctx context.Context, cmd *cli.Command) error {
	ac, err := NewAppContext(cmd)
	if err != nil {
		return err
	}
	tok, err := ac.Token(ctx)
	if err != nil {
		return err
	}
	products, err := ac.Client.ListProducts(ctx, tok)
	if err != nil {
		return fmt.Errorf("API Test Failed: %w", err)
	}
	fmt.Fprintf(ac.Out, "Successfully fetched %d products!\n", len(products))
	return nil
}
