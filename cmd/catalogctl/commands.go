package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/importer"
	catalogRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-storefront-service/internal/currency"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	importFile     string
	searchQuery    string
	searchCategory string
	searchSort     string
)

// migrateCmd creates the products table and copies the static dataset into it when empty.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog schema and load the seed dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pg, closeDB, err := openPostgres(ctx, config.LoadEnv())
		if err != nil {
			return err
		}
		defer closeDB()

		existing, err := pg.FindAll(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready, %d products already present\n", len(existing))
			return nil
		}

		seed, err := catalogRepoPkg.NewStaticRepository(datasetFile)
		if err != nil {
			return err
		}
		products, err := seed.FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range products {
			if err := pg.Save(ctx, &products[i]); err != nil {
				return fmt.Errorf("seed %s: %w", products[i].Slug, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema ready, seeded %d products\n", len(products))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert products from an .xlsx spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sheet, err := importer.ReadFile(importFile)
		if err != nil {
			return err
		}

		uc, closer, err := openCatalog(ctx, newLogger())
		if err != nil {
			return err
		}
		defer closer()

		result, err := uc.ImportProducts(ctx, sheet.Products)
		if err != nil {
			return err
		}
		result.Skipped += len(sheet.Skipped)
		result.Errors = append(result.Errors, sheet.Skipped...)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created %d, updated %d, skipped %d\n", result.Created, result.Updated, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		return nil
	},
}

var facetsCmd = &cobra.Command{
	Use:       "facets <category|material|style|color>",
	Short:     "List the distinct values of one facet",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"category", "material", "style", "color"},
	RunE: func(cmd *cobra.Command, args []string) error {
		facet, err := dto.ParseFacet(args[0])
		if err != nil {
			return err
		}

		uc, closer, err := openCatalog(cmd.Context(), newLogger())
		if err != nil {
			return err
		}
		defer closer()

		values, err := uc.FacetValues(cmd.Context(), facet)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the storefront filter and sort pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, closer, err := openCatalog(cmd.Context(), newLogger())
		if err != nil {
			return err
		}
		defer closer()

		criteria := &dto.ProductFilterCriteria{
			Category: searchCategory,
			Search:   strings.TrimSpace(searchQuery),
		}
		products, err := uc.ListProducts(cmd.Context(), criteria, dto.ParseSortKey(searchSort))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME\tCATEGORY\tPRICE")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Slug, p.Name, p.Category,
				currency.Format(decimal.NewFromFloat(p.Price), currency.DefaultCode))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d products\n", len(products))
		return nil
	},
}
