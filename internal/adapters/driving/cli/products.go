package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var (
	productFilter domain.ProductFilter
	productMin    float64
	productMax    float64
	productsJSON  bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Query stored products",
}

var productsGetCmd = &cobra.Command{
	Use:   "get <domain> <product-id>",
	Short: "Show one stored product with its tracking data",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductsGet,
}

var productsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored products",
	Args:  cobra.NoArgs,
	RunE:  runProductsSearch,
}

var productsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show product counts by domain and brand",
	Args:  cobra.NoArgs,
	RunE:  runProductsStats,
}

func init() {
	f := productsSearchCmd.Flags()
	f.StringVar(&productFilter.Domain, "domain", "", "site, e.g. falabella")
	f.StringVar(&productFilter.Brand, "brand", "", "brand (case-insensitive)")
	f.StringVar(&productFilter.Category, "category", "", "category (case-insensitive)")
	f.StringVarP(&productFilter.Text, "query", "q", "", "text in name or description")
	f.Float64Var(&productMin, "min-price", 0, "minimum price")
	f.Float64Var(&productMax, "max-price", 0, "maximum price")
	f.IntVarP(&productFilter.Limit, "limit", "n", 20, "maximum number of results")
	f.IntVar(&productFilter.Skip, "skip", 0, "results to skip")

	for _, c := range []*cobra.Command{productsGetCmd, productsSearchCmd, productsStatsCmd} {
		c.Flags().BoolVar(&productsJSON, "json", false, "output as JSON")
		productsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(productsCmd)
}

func runProductsGet(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	p, err := catalogService.GetProduct(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if productsJSON {
		return printJSON(cmd, p)
	}

	cmd.Println(titleStyle.Render(p.Name))
	cmd.Printf("  Key:       %s\n", p.UniqueKey)
	if p.Brand != "" {
		cmd.Printf("  Brand:     %s\n", p.Brand)
	}
	cmd.Printf("  Price:     %s\n", formatPrice(p.Price))
	if pt, ok := p.LatestPrice(); ok {
		cmd.Printf("  Price since: %s\n", pt.RecordedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Printf("  Version:   %d\n", p.Version)
	cmd.Printf("  First seen: %s\n", p.FirstSeenAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Last seen:  %s\n", p.LastSeenAt.Format("2006-01-02 15:04:05"))
	if len(p.PriceHistory) > 0 {
		rows := make([][]string, 0, len(p.PriceHistory))
		for _, pt := range p.PriceHistory {
			rows = append(rows, []string{pt.RecordedAt.Format("2006-01-02 15:04:05"), formatPrice(pt.Price)})
		}
		cmd.Println(renderTable([]string{"recorded", "price"}, rows))
	}
	return nil
}

func runProductsSearch(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	filter := productFilter
	filter.MinPrice = floatFlag(cmd, "min-price", productMin)
	filter.MaxPrice = floatFlag(cmd, "max-price", productMax)

	products, err := catalogService.SearchProducts(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("search products: %w", err)
	}
	if productsJSON {
		return printJSON(cmd, products)
	}
	if len(products) == 0 {
		cmd.Println("No products found.")
		return nil
	}

	rows := make([][]string, 0, len(products))
	for i := range products {
		p := &products[i]
		rows = append(rows, []string{p.UniqueKey, p.Name, p.Brand, formatPrice(p.Price), strconv.Itoa(p.Version)})
	}
	cmd.Println(renderTable([]string{"key", "name", "brand", "price", "version"}, rows))
	return nil
}

func runProductsStats(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	stats, err := catalogService.ProductStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("product stats: %w", err)
	}
	if productsJSON {
		return printJSON(cmd, stats)
	}
	printStats(cmd, "Products", stats)
	return nil
}

// floatFlag returns the flag value only when it was set.
func floatFlag(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
