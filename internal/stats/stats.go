// Package stats derives performance statistics from a collection of
// journaled trades. All functions are pure and synchronous: they read the
// input slice, allocate fresh output, and never mutate shared state, so
// repeated calls over identical input yield identical results.
//
// Degenerate inputs (empty collections, zero winners or losers, missing
// optional fields) produce documented fallback values rather than errors,
// NaN or Inf; upstream data entry is user-driven and not guaranteed
// complete, so partially populated trades are excluded per metric instead
// of rejected.
package stats

import (
	"math"
	"sort"
	"time"

	"tradejournal/internal/domain"
)

// ProfitFactorCap is reported instead of a literal infinity when gross
// losses are zero while gross wins are positive. Keeps the value
// serializable and comparable.
const ProfitFactorCap = 9999.0

// Summary holds win/loss aggregates over closed trades.
type Summary struct {
	TotalTrades     int     // Closed trades, including breakevens
	WinTrades       int     // NetPnL > 0
	LossTrades      int     // NetPnL < 0
	BreakevenTrades int     // NetPnL == 0
	WinRate         float64 // Percentage, 0 when there are no closed trades
	TotalPnL        float64 // Sum of NetPnL over closed trades
	TotalCommission float64
	AvgWin          float64 // 0 when there are no winners
	AvgLoss         float64 // Negative, 0 when there are no losers
	ProfitFactor    float64 // Gross win / |gross loss|, capped at ProfitFactorCap
}

// Aggregate computes win/loss statistics in a single pass over closed
// trades. Breakeven trades count toward TotalTrades (and therefore the
// win-rate denominator) but toward neither the win nor the loss bucket.
func Aggregate(trades []*domain.Trade) Summary {
	var s Summary
	var grossWin, grossLoss float64

	for _, t := range trades {
		if t == nil || !t.IsClosed() {
			continue
		}
		s.TotalTrades++
		s.TotalPnL += t.NetPnL
		s.TotalCommission += t.Commission
		switch {
		case t.NetPnL > 0:
			s.WinTrades++
			grossWin += t.NetPnL
		case t.NetPnL < 0:
			s.LossTrades++
			grossLoss += t.NetPnL
		default:
			s.BreakevenTrades++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinTrades) / float64(s.TotalTrades) * 100
	}
	if s.WinTrades > 0 {
		s.AvgWin = grossWin / float64(s.WinTrades)
	}
	if s.LossTrades > 0 {
		s.AvgLoss = grossLoss / float64(s.LossTrades)
	}
	switch {
	case grossLoss != 0:
		s.ProfitFactor = grossWin / math.Abs(grossLoss)
		if s.ProfitFactor > ProfitFactorCap {
			s.ProfitFactor = ProfitFactorCap
		}
	case grossWin > 0:
		s.ProfitFactor = ProfitFactorCap
	}
	return s
}

// Report is the full set of derived statistics for a trade collection.
// It has no lifecycle of its own: it is a projection of the trades it was
// computed from and is recomputed whenever they change.
type Report struct {
	WindowDays int
	Summary    Summary
	Daily      []DailyBucket
	Curve      []CurvePoint
	Efficiency Efficiency
	Streaks    Streaks
}

// Compute derives the complete report for the given trades. windowDays
// bounds the daily P&L buckets; now anchors the window and supplies the
// timezone for calendar-day truncation.
func Compute(trades []*domain.Trade, windowDays int, now time.Time) Report {
	return Report{
		WindowDays: windowDays,
		Summary:    Aggregate(trades),
		Daily:      DailyPnL(trades, windowDays, now),
		Curve:      CumulativePnL(trades),
		Efficiency: ComputeEfficiency(trades),
		Streaks:    ComputeStreaks(trades),
	}
}

// closedByDate returns the closed, dated trades sorted chronologically by
// StatTime. The sort is stable: trades sharing a timestamp keep their input
// order, which is the documented tie-break since the source data has no
// inherent ordering field.
func closedByDate(trades []*domain.Trade) []*domain.Trade {
	closed := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t == nil || !t.IsClosed() || t.StatTime().IsZero() {
			continue
		}
		closed = append(closed, t)
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].StatTime().Before(closed[j].StatTime())
	})
	return closed
}

// truncateDay returns the local midnight of t in the given location.
func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
