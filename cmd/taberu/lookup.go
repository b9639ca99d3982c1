package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/manual"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/scan"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <barcode>",
	Short: "Look up a product by barcode",
	Long: `Look up a product by barcode. When nothing is found you are asked to
either reset and scan again or enter the product by hand; a hand-entered
product is stored and added to the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var lookupSource string

func init() {
	lookupCmd.Flags().StringVar(&lookupSource, "source", "", "lookup source: remote (default) or catalog")
}

func runLookup(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	return withComponents(func(c *Components) error {
		ctx := cmd.Context()
		provider := c.Provider()
		if lookupSource == string(models.SourceCatalog) {
			provider = c.Catalog
		}

		session := scan.NewSession(provider, c.Logger)
		outcome := session.Scan(ctx, args[0])
		out := cmd.OutOrStdout()

		switch outcome.Kind {
		case scan.Found:
			remember(ctx, c, outcome.Food)
			return cli.WriteFood(out, outcome.Food, format)
		case scan.Ignored:
			return fmt.Errorf("barcode %q ignored", args[0])
		}

		barcode, _ := session.Pending()
		p := newPrompter(cmd.InOrStdin(), out)
		choice, err := p.choose(barcode)
		if err != nil {
			return err
		}
		entry, err := session.Resolve(choice)
		if err != nil {
			return err
		}
		if entry == nil {
			fmt.Fprintln(out, "Ready for the next scan.")
			return nil
		}
		food, err := enterManually(ctx, c, p, entry)
		if err != nil {
			return err
		}
		return cli.WriteFood(out, food, format)
	})
}

// enterManually asks for the entry fields until they validate, then stores
// the normalized food.
func enterManually(ctx context.Context, c *Components, p *prompter, entry *manual.Entry) (*models.Food, error) {
	for {
		if err := p.fill(entry); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errCancelled
			}
			return nil, err
		}
		food, err := manual.Normalize(entry)
		var verr *manual.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(p.out, verr.Message)
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := saveManual(ctx, c, food); err != nil {
			return nil, err
		}
		return food, nil
	}
}

// saveManual stores a hand-entered food and adds it to the catalog.
func saveManual(ctx context.Context, c *Components, food *models.Food) error {
	if err := c.Store.AddFood(ctx, food); err != nil {
		return err
	}
	remember(ctx, c, food)
	return nil
}

// remember adds foods to the local catalog. Failures only cost offline
// search coverage, so they are logged and not returned.
func remember(ctx context.Context, c *Components, foods ...*models.Food) {
	if len(foods) == 0 {
		return
	}
	if err := c.Catalog.Add(ctx, foods...); err != nil {
		c.Logger.Warn("catalog add failed", zap.Int("count", len(foods)), zap.Error(err))
	}
}
