package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var (
	extractURL  string
	extractKind string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract entities from a payload without storing them",
	Long: `Runs extraction on one payload file and prints the result as JSON.
--kind selects product or listing extraction; auto picks listing when a
real-estate strategy claims the payload.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "source URL of the payload")
	extractCmd.Flags().StringVar(&extractKind, "kind", "auto", "entity kind: product, listing or auto")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if productExtractor == nil || listingExtractor == nil {
		return errNotConfigured
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	payload := domain.NewPayload(data)

	kind := extractKind
	if kind == "auto" {
		kind = "product"
		if listingExtractor.Claims(payload, extractURL) {
			kind = "listing"
		}
	}

	var result any
	switch kind {
	case "product":
		result = productExtractor.Extract(payload, extractURL, "")
	case "listing":
		result = listingExtractor.Extract(payload, extractURL, "")
	default:
		return fmt.Errorf("%w %q (want product, listing or auto)", domain.ErrUnsupportedKind, extractKind)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
