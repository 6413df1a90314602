package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagHistoryBy    string
	flagHistoryLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Recorded income and expenses by day, week or month",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryBy, "by", "b", "day", "Group by day, week or month")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 0, "Show only the newest N rows (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	period := model.ParsePeriod(flagHistoryBy)
	if string(period) != flagHistoryBy {
		return fmt.Errorf("unknown grouping %q, use day, week or month", flagHistoryBy)
	}

	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	rows := snap.History(period)
	if len(rows) == 0 {
		fmt.Println("\n  Nothing recorded yet.")
		return nil
	}
	if flagHistoryLimit > 0 && len(rows) > flagHistoryLimit {
		rows = rows[:flagHistoryLimit]
	}

	fmt.Println()
	if period == model.PeriodDay {
		printDays(rows)
		return nil
	}

	tableRows := make([][]string, 0, len(rows)+2)
	var total model.PeriodSummary
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			cli.FormatPeriodLabel(r, period),
			strconv.Itoa(r.Days),
			cli.FormatMoney(r.DailyIncome),
			cli.FormatMoney(r.ExtraIncome),
			cli.FormatMoney(r.ExtraExpense),
			cli.FormatSigned(r.Net()),
		})
		total.Days += r.Days
		total.DailyIncome += r.DailyIncome
		total.ExtraIncome += r.ExtraIncome
		total.ExtraExpense += r.ExtraExpense
	}
	tableRows = append(tableRows, []string{"---"}, []string{
		"Total",
		strconv.Itoa(total.Days),
		cli.FormatMoney(total.DailyIncome),
		cli.FormatMoney(total.ExtraIncome),
		cli.FormatMoney(total.ExtraExpense),
		cli.FormatSigned(total.Net()),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("HISTORY  by %s", period),
		Headers: []string{"Period", "Days", "Income", "Extra in", "Extra out", "Net"},
		Rows:    tableRows,
	}))
	return nil
}

// printDays lists every entry under its day heading.
func printDays(days []model.PeriodSummary) {
	for _, d := range days {
		fmt.Printf("  %s  net %s\n", cli.FormatPeriodLabel(d, model.PeriodDay), cli.RenderAmount(d.Net()))
		if d.HasDaily {
			fmt.Printf("    Daily income  %s\n", cli.FormatMoney(d.DailyIncome))
		} else {
			fmt.Println("    Daily income  not recorded")
		}
		for _, e := range d.Incomes {
			fmt.Printf("    + %-12s %s\n", cli.FormatMoney(e.Amount), e.Description)
		}
		for _, e := range d.Expenses {
			fmt.Printf("    - %-12s %s\n", cli.FormatMoney(e.Amount), e.Description)
		}
		fmt.Println()
	}
}
