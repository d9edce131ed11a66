package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var (
	listingFilter domain.ListingFilter
	listingType   string
	listingMin    float64
	listingMax    float64
	listingsJSON  bool
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Query stored real-estate listings",
}

var listingsGetCmd = &cobra.Command{
	Use:   "get <domain> <listing-id>",
	Short: "Show one stored listing with its tracking data",
	Args:  cobra.ExactArgs(2),
	RunE:  runListingsGet,
}

var listingsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored listings",
	Args:  cobra.NoArgs,
	RunE:  runListingsSearch,
}

var listingsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listing counts by domain, district and type",
	Args:  cobra.NoArgs,
	RunE:  runListingsStats,
}

func init() {
	f := listingsSearchCmd.Flags()
	f.StringVar(&listingFilter.Domain, "domain", "", "site, e.g. urbania")
	f.StringVar(&listingType, "type", "", "sale or rent")
	f.StringVar(&listingFilter.PropertyType, "property-type", "", "property type (case-insensitive)")
	f.StringVar(&listingFilter.District, "district", "", "district (case-insensitive)")
	f.StringVar(&listingFilter.City, "city", "", "city (case-insensitive)")
	f.IntVar(&listingFilter.MinBedrooms, "min-bedrooms", 0, "minimum bedrooms")
	f.StringVarP(&listingFilter.Text, "query", "q", "", "text in title or description")
	f.Float64Var(&listingMin, "min-price", 0, "minimum price")
	f.Float64Var(&listingMax, "max-price", 0, "maximum price")
	f.IntVarP(&listingFilter.Limit, "limit", "n", 20, "maximum number of results")
	f.IntVar(&listingFilter.Skip, "skip", 0, "results to skip")

	for _, c := range []*cobra.Command{listingsGetCmd, listingsSearchCmd, listingsStatsCmd} {
		c.Flags().BoolVar(&listingsJSON, "json", false, "output as JSON")
		listingsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(listingsCmd)
}

func runListingsGet(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	l, err := catalogService.GetListing(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("get listing: %w", err)
	}
	if listingsJSON {
		return printJSON(cmd, l)
	}

	cmd.Println(titleStyle.Render(l.Title))
	cmd.Printf("  Key:      %s\n", l.UniqueKey)
	if l.ListingType != "" {
		cmd.Printf("  Type:     %s\n", l.ListingType)
	}
	if l.PropertyType != "" {
		cmd.Printf("  Property: %s\n", l.PropertyType)
	}
	cmd.Printf("  Price:    %s\n", formatPrice(l.Price))
	if pt, ok := l.LatestPrice(); ok {
		cmd.Printf("  Since:    %s\n", pt.RecordedAt.Format("2006-01-02 15:04:05"))
	}
	if l.Location.District != "" {
		cmd.Printf("  District: %s\n", l.Location.District)
	}
	if l.Features.Bedrooms > 0 {
		cmd.Printf("  Bedrooms: %d\n", l.Features.Bedrooms)
	}
	cmd.Printf("  Version:  %d\n", l.Version)
	return nil
}

func runListingsSearch(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	filter := listingFilter
	filter.ListingType = domain.ListingType(listingType)
	filter.MinPrice = floatFlag(cmd, "min-price", listingMin)
	filter.MaxPrice = floatFlag(cmd, "max-price", listingMax)

	listings, err := catalogService.SearchListings(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("search listings: %w", err)
	}
	if listingsJSON {
		return printJSON(cmd, listings)
	}
	if len(listings) == 0 {
		cmd.Println("No listings found.")
		return nil
	}

	rows := make([][]string, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		rows = append(rows, []string{
			l.UniqueKey, l.Title, string(l.ListingType), l.Location.District,
			formatPrice(l.Price), strconv.Itoa(l.Features.Bedrooms),
		})
	}
	cmd.Println(renderTable([]string{"key", "title", "type", "district", "price", "beds"}, rows))
	return nil
}

func runListingsStats(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errNotConfigured
	}
	stats, err := catalogService.ListingStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing stats: %w", err)
	}
	if listingsJSON {
		return printJSON(cmd, stats)
	}
	printStats(cmd, "Listings", stats)
	return nil
}
