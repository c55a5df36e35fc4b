package stats

import "tradejournal/internal/domain"

// Streaks tracks runs of consecutive winners and losers over the
// chronologically ordered closed trades.
type Streaks struct {
	CurrentWin  int // Length of the win streak ending at the latest trade
	CurrentLoss int // Length of the loss streak ending at the latest trade
	MaxWin      int
	MaxLoss     int
}

// ComputeStreaks walks closed trades in StatTime order, extending the
// running streak on same-sign results and resetting on a sign change.
// Breakeven trades reset both streaks.
func ComputeStreaks(trades []*domain.Trade) Streaks {
	var s Streaks
	var curWin, curLoss int

	for _, t := range closedByDate(trades) {
		switch {
		case t.NetPnL > 0:
			curWin++
			curLoss = 0
		case t.NetPnL < 0:
			curLoss++
			curWin = 0
		default:
			curWin, curLoss = 0, 0
		}
		if curWin > s.MaxWin {
			s.MaxWin = curWin
		}
		if curLoss > s.MaxLoss {
			s.MaxLoss = curLoss
		}
	}

	s.CurrentWin = curWin
	s.CurrentLoss = curLoss
	return s
}
