package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var jobsJSON bool

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect received job events",
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show the raw record of one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsGet,
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job counts by final state",
	Args:  cobra.NoArgs,
	RunE:  runJobsStats,
}

func init() {
	for _, c := range []*cobra.Command{jobsGetCmd, jobsStatsCmd} {
		c.Flags().BoolVar(&jobsJSON, "json", false, "output as JSON")
		jobsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(jobsCmd)
}

func runJobsGet(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errNotConfigured
	}
	job, err := jobService.GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if jobsJSON {
		return printJSON(cmd, job)
	}

	cmd.Println(titleStyle.Render(job.JobID))
	cmd.Printf("  URL:      %s\n", job.URL)
	cmd.Printf("  Domain:   %s\n", job.Domain)
	cmd.Printf("  State:    %s\n", job.State)
	if job.FailureReason != "" {
		cmd.Printf("  Reason:   %s\n", job.FailureReason)
	}
	cmd.Printf("  Received: %s\n", job.ReceivedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runJobsStats(cmd *cobra.Command, _ []string) error {
	if jobService == nil {
		return errNotConfigured
	}
	counts, err := jobService.JobStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("job stats: %w", err)
	}
	if jobsJSON {
		return printJSON(cmd, counts)
	}

	rows := make([][]string, 0, len(counts))
	for _, state := range []domain.JobState{domain.JobCompleted, domain.JobFailed} {
		rows = append(rows, []string{string(state), strconv.Itoa(counts[state])})
	}
	cmd.Println(renderTable([]string{"state", "jobs"}, rows))
	return nil
}
