// Package render prints derived statistics as terminal tables.
package render

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"tradejournal/internal/stats"
)

// Overview prints the headline summary card for a report.
func Overview(w io.Writer, r stats.Report, currency string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	s := r.Summary
	fmt.Fprintf(tw, "Trades\t%d (%d W / %d L / %d BE)\n", s.TotalTrades, s.WinTrades, s.LossTrades, s.BreakevenTrades)
	fmt.Fprintf(tw, "Win rate\t%.1f%%\n", s.WinRate)
	fmt.Fprintf(tw, "Net P&L\t%s\n", formatPL(s.TotalPnL, currency))
	fmt.Fprintf(tw, "Commission\t%s\n", formatMoney(s.TotalCommission, currency))
	fmt.Fprintf(tw, "Avg win\t%s\n", formatMoney(s.AvgWin, currency))
	fmt.Fprintf(tw, "Avg loss\t%s\n", formatMoney(s.AvgLoss, currency))
	fmt.Fprintf(tw, "Profit factor\t%s\n", formatProfitFactor(s.ProfitFactor))

	if r.Efficiency.EligibleTrades > 0 {
		fmt.Fprintf(tw, "MAE recovery\t%.1f%% (%d trades)\n", r.Efficiency.MAERecovery, r.Efficiency.EligibleTrades)
		fmt.Fprintf(tw, "MFE capture\t%.1f%% (%d trades)\n", r.Efficiency.MFECapture, r.Efficiency.EligibleTrades)
	}
	fmt.Fprintf(tw, "Streaks\tcurrent %dW/%dL, best %dW, worst %dL\n",
		r.Streaks.CurrentWin, r.Streaks.CurrentLoss, r.Streaks.MaxWin, r.Streaks.MaxLoss)

	tw.Flush()
}

// DailyTable prints the dense daily P&L buckets.
func DailyTable(w io.Writer, buckets []stats.DailyBucket, currency string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "DATE\tTRADES\tWINS\tLOSSES\tP&L\n")
	var total float64
	var trades int
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			b.Date.Format("2006-01-02"), b.TradeCount, b.WinCount, b.LossCount, formatPL(b.PnL, currency))
		total += b.PnL
		trades += b.TradeCount
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\t\t%s\n", trades, formatPL(total, currency))

	tw.Flush()
}

// CurveTable prints the cumulative P&L series.
func CurveTable(w io.Writer, curve []stats.CurvePoint, currency string) {
	if len(curve) == 0 {
		fmt.Fprintln(w, "No closed trades yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tDATE\tTRADE P&L\tCUMULATIVE\n")
	for _, p := range curve {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			p.TradeCount, p.Date.Format("2006-01-02 15:04"), formatPL(p.TradePnL, currency), formatPL(p.CumulativePnL, currency))
	}
	tw.Flush()
}

func formatMoney(v float64, currency string) string {
	return fmt.Sprintf("%s %s", humanize.CommafWithDigits(v, 2), currency)
}

func formatPL(v float64, currency string) string {
	if v >= 0 {
		return fmt.Sprintf("+%s %s", humanize.CommafWithDigits(v, 2), currency)
	}
	return fmt.Sprintf("-%s %s", humanize.CommafWithDigits(math.Abs(v), 2), currency)
}

func formatProfitFactor(pf float64) string {
	if pf >= stats.ProfitFactorCap {
		return fmt.Sprintf(">= %.0f (no losing trades)", stats.ProfitFactorCap)
	}
	return fmt.Sprintf("%.2f", pf)
}
