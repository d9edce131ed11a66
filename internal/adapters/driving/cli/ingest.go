package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var (
	ingestURL    string
	ingestJobID  string
	ingestEvents bool
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Route payload files as completed jobs",
	Long: `Reads each file as the result payload of a completed crawl job for --url
and routes it: extraction, then storage. With --events, each file instead
holds a complete job event JSON document and --url is not needed.

Files are processed concurrently (intake.concurrency). An unreachable
store stops the whole run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "source URL of the payloads")
	ingestCmd.Flags().StringVar(&ingestJobID, "job-id", "", "job ID (single file only; generated otherwise)")
	ingestCmd.Flags().BoolVar(&ingestEvents, "events", false, "files hold job event JSON")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if jobRouter == nil {
		return errNotConfigured
	}
	if !ingestEvents && ingestURL == "" {
		return errors.New("--url is required unless --events is set")
	}
	if ingestJobID != "" && len(args) > 1 {
		return errors.New("--job-id can only be used with a single file")
	}

	results := make([]*domain.RouteResult, len(args))
	var mu sync.Mutex
	var failed []string

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(cfg.Intake.Concurrency, 1))
	for i, path := range args {
		g.Go(func() error {
			event, err := readEvent(path)
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				return nil
			}
			result, err := jobRouter.Handle(ctx, event)
			if errors.Is(err, domain.ErrStoreUnavailable) {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if ingestJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	} else {
		for i, r := range results {
			if r == nil {
				continue
			}
			cmd.Printf("%s: %s via %s, %d extracted, %d inserted, %d updated, %d errors\n",
				filepath.Base(args[i]), r.Kind, r.Strategy, r.Extracted,
				r.Summary.Inserted, r.Summary.Updated, r.Summary.Errors)
			for _, e := range r.Errors {
				cmd.Printf("    %s\n", e)
			}
		}
	}

	if len(failed) > 0 {
		for _, f := range failed {
			cmd.PrintErrln(f)
		}
		return fmt.Errorf("%d of %d files failed", len(failed), len(args))
	}
	return nil
}

// readEvent builds the job event for one input file.
func readEvent(path string) (domain.JobEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.JobEvent{}, err
	}
	if ingestEvents {
		var event domain.JobEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return domain.JobEvent{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if event.JobID == "" {
			event.JobID = uuid.NewString()
		}
		return event, nil
	}

	jobID := ingestJobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	return domain.JobEvent{
		JobID:  jobID,
		URL:    ingestURL,
		Result: rawResult(data),
		State:  domain.JobCompleted,
	}, nil
}

// rawResult keeps JSON payloads as-is and wraps anything else (HTML) in a
// JSON string so it survives the event's json.RawMessage field.
func rawResult(data []byte) json.RawMessage {
	if json.Valid(data) {
		return data
	}
	quoted, _ := json.Marshal(string(data))
	return quoted
}
