package stats

import (
	"time"

	"tradejournal/internal/domain"
)

// DailyBucket aggregates one calendar day of closed trades.
type DailyBucket struct {
	Date       time.Time // Local midnight of the bucket's day
	PnL        float64
	TradeCount int
	WinCount   int
	LossCount  int
}

// DailyPnL buckets closed trades into one entry per calendar day over the
// window [now-days+1 .. now], inclusive, sorted ascending. Days without
// trades still appear zero-filled, so the result always has exactly `days`
// entries. Trades are keyed by the calendar day of StatTime in now's
// location; trades outside the window or without a usable date are skipped.
// Returns nil when days < 1.
func DailyPnL(trades []*domain.Trade, days int, now time.Time) []DailyBucket {
	if days < 1 {
		return nil
	}

	loc := now.Location()
	start := truncateDay(now, loc).AddDate(0, 0, -(days - 1))

	buckets := make([]DailyBucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i)
		index[buckets[i].Date.Format("2006-01-02")] = i
	}

	for _, t := range trades {
		if t == nil || !t.IsClosed() {
			continue
		}
		st := t.StatTime()
		if st.IsZero() {
			continue
		}
		i, ok := index[st.In(loc).Format("2006-01-02")]
		if !ok {
			continue // outside the window, excluded rather than clamped
		}
		b := &buckets[i]
		b.PnL += t.NetPnL
		b.TradeCount++
		switch {
		case t.NetPnL > 0:
			b.WinCount++
		case t.NetPnL < 0:
			b.LossCount++
		}
	}
	return buckets
}

// CurvePoint is one step of the running P&L sum.
type CurvePoint struct {
	Date          time.Time
	TradePnL      float64
	CumulativePnL float64
	TradeCount    int // Monotonically increasing, 1-based
}

// CumulativePnL produces the chronologically ordered running sum over closed
// trades. Ties on StatTime keep input order. Empty input yields an empty
// series, not a zero point; callers must handle that case distinctly.
func CumulativePnL(trades []*domain.Trade) []CurvePoint {
	closed := closedByDate(trades)
	if len(closed) == 0 {
		return nil
	}

	points := make([]CurvePoint, 0, len(closed))
	var running float64
	for i, t := range closed {
		running += t.NetPnL
		points = append(points, CurvePoint{
			Date:          t.StatTime(),
			TradePnL:      t.NetPnL,
			CumulativePnL: running,
			TradeCount:    i + 1,
		})
	}
	return points
}
