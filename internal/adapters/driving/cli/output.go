package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func groupRows(groups []domain.GroupCount) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Key, strconv.Itoa(g.Count)})
	}
	return rows
}

// printStats renders a Stats breakdown as titled tables.
func printStats(cmd *cobra.Command, entity string, stats *domain.Stats) {
	cmd.Println(titleStyle.Render(fmt.Sprintf("%s: %d", entity, stats.Total)))
	cmd.Println()
	cmd.Println(renderTable([]string{"domain", "count"}, groupRows(stats.ByDomain)))
	if len(stats.ByGroup) > 0 {
		cmd.Println(renderTable([]string{stats.GroupField, "count"}, groupRows(stats.ByGroup)))
	}
	if len(stats.ByType) > 0 {
		cmd.Println(renderTable([]string{"type", "count"}, groupRows(stats.ByType)))
	}
}

func formatPrice(p domain.Price) string {
	return fmt.Sprintf("%s %.2f", p.Currency, p.Amount)
}
