package cmd

import (
	"fmt"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress toward the goal (default command)",
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(_ *cobra.Command, _ []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	if snap.Settings == nil {
		fmt.Println()
		fmt.Println("  No goal configured yet.")
		fmt.Println("  Run `payoff setup` to set the total, target date, monthly expense and daily income.")
		return nil
	}

	p := snap.Progress(today, engineOptions())

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", cli.FormatModeLabel(p.Mode), cli.FormatDate(today, dateFormat()))))
	fmt.Println()
	fmt.Println("  " + cli.RenderProgressBar(p.Percentage, 40))
	fmt.Println()

	fmt.Print(cli.RenderKV([][2]string{
		{cli.ProgressedLabel(p.Mode), cli.FormatMoney(p.TotalNetIncome) + " of " + cli.FormatMoney(p.TotalAmount)},
		{"Remaining", cli.FormatMoney(p.RemainingAmount)},
		{"Target date", cli.FormatDate(p.TargetDate, dateFormat())},
		{"Estimated finish", cli.FormatEstimate(p, dateFormat())},
		{"Schedule", cli.FormatSchedule(p)},
		{fmt.Sprintf("%d-day average", flagWindow), cli.FormatSigned(p.AvgBasicNetIncome) + " per day"},
	}))

	until := model.StartOfDay(today)
	since := until.AddDate(0, 0, -(flagWindow*2 - 1))
	net := pipeline.NetSeries(snap.Records, snap.Settings, since, until)
	if len(net) > 0 {
		fmt.Println()
		fmt.Printf("  Last %d days  %s\n", len(net), cli.RenderSparkline(net))
	}

	rec, ok := snap.Records[model.DateKey(today)]
	if !ok || !rec.HasDailyIncome() {
		fmt.Println()
		fmt.Println(cli.RenderWarning("No income recorded for today."))
		fmt.Printf("  Record it with `payoff record income %.2f` (your configured daily income).\n",
			snap.Settings.DailyIncome)
	} else if extra := engine.DailyExtraExpense(rec); extra > 0 {
		fmt.Println()
		fmt.Printf("  Today: %s income, %s in extra expenses\n",
			cli.FormatMoney(*rec.DailyIncome), cli.FormatMoney(extra))
	}
	fmt.Println()
	return nil
}
