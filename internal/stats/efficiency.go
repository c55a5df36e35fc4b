package stats

import "tradejournal/internal/domain"

// Efficiency reports how well trades used their price excursions, averaged
// over the closed trades that carry both MAE and MFE data. Trades lacking
// either field are excluded here but still count in the basic win/loss
// statistics.
type Efficiency struct {
	EligibleTrades int
	MAERecovery    float64 // Percentage 0..100, 0 when no trades are eligible
	MFECapture     float64 // Percentage 0..100, 0 when no trades are eligible
}

// ComputeEfficiency averages the per-trade MAE recovery and MFE capture
// ratios, reported as percentages.
func ComputeEfficiency(trades []*domain.Trade) Efficiency {
	var e Efficiency
	var maeSum, mfeSum float64

	for _, t := range trades {
		if t == nil || !t.IsClosed() || !t.HasExcursions() {
			continue
		}
		e.EligibleTrades++
		maeSum += maeRecovery(t)
		mfeSum += mfeCapture(t)
	}

	if e.EligibleTrades > 0 {
		e.MAERecovery = maeSum / float64(e.EligibleTrades) * 100
		e.MFECapture = mfeSum / float64(e.EligibleTrades) * 100
	}
	return e
}

// maeRecovery rewards trades that closed near break-even despite adverse
// excursion. A profitable close recovered fully; otherwise the ratio is
// 1 + pnl/mae clamped to [0, 1]. Zero MAE means there was nothing to
// recover from, which counts as full recovery.
func maeRecovery(t *domain.Trade) float64 {
	if t.NetPnL > 0 {
		return 1
	}
	mae := *t.MaxAdversePrice
	if mae == 0 {
		return 1
	}
	r := 1 + t.NetPnL/mae
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// mfeCapture measures how much of the best unrealized gain was kept. A
// losing or breakeven trade captured none of it by definition.
func mfeCapture(t *domain.Trade) float64 {
	if t.NetPnL <= 0 {
		return 0
	}
	mfe := *t.MaxFavorablePrice
	if mfe <= 0 {
		// Closed in profit with no recorded favorable excursion beyond the
		// close itself: treat as fully captured.
		return 1
	}
	r := t.NetPnL / mfe
	if r > 1 {
		return 1
	}
	return r
}
