package stats

import (
	"testing"
	"time"

	"tradejournal/internal/domain"
)

func closedTrade(pnl float64, exit time.Time) *domain.Trade {
	return &domain.Trade{
		Symbol:     "AAPL",
		Direction:  domain.Long,
		Quantity:   100,
		EntryPrice: 100,
		ExitPrice:  100 + pnl/100,
		EntryTime:  exit.Add(-2 * time.Hour),
		ExitTime:   exit,
		Status:     domain.StatusClosed,
		NetPnL:     pnl,
	}
}

func TestAggregate(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	trades := []*domain.Trade{
		closedTrade(200, exit),
		closedTrade(100, exit.Add(time.Hour)),
		closedTrade(-100, exit.Add(2*time.Hour)),
		closedTrade(0, exit.Add(3*time.Hour)),
	}

	s := Aggregate(trades)

	if s.TotalTrades != 4 {
		t.Errorf("Expected 4 total trades, got %d", s.TotalTrades)
	}
	if s.WinTrades != 2 {
		t.Errorf("Expected 2 winning trades, got %d", s.WinTrades)
	}
	if s.LossTrades != 1 {
		t.Errorf("Expected 1 losing trade, got %d", s.LossTrades)
	}
	if s.BreakevenTrades != 1 {
		t.Errorf("Expected 1 breakeven trade, got %d", s.BreakevenTrades)
	}
	if s.WinRate != 50 {
		t.Errorf("Expected 50 win rate, got %f", s.WinRate)
	}
	if s.TotalPnL != 200 {
		t.Errorf("Expected 200 total PnL, got %f", s.TotalPnL)
	}
	if s.AvgWin != 150 {
		t.Errorf("Expected 150 average win, got %f", s.AvgWin)
	}
	if s.AvgLoss != -100 {
		t.Errorf("Expected -100 average loss, got %f", s.AvgLoss)
	}
	// Wins sum to 300, losses to -100: exactly 3.0.
	if s.ProfitFactor != 3.0 {
		t.Errorf("Expected 3.0 profit factor, got %f", s.ProfitFactor)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.TotalTrades != 0 {
		t.Errorf("Expected 0 total trades, got %d", s.TotalTrades)
	}
	if s.WinRate != 0 {
		t.Errorf("Expected 0 win rate, got %f", s.WinRate)
	}
	if s.ProfitFactor != 0 {
		t.Errorf("Expected 0 profit factor, got %f", s.ProfitFactor)
	}
}

func TestAggregateSkipsOpenTrades(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	open := &domain.Trade{
		Symbol:     "MSFT",
		Direction:  domain.Long,
		Quantity:   10,
		EntryPrice: 400,
		EntryTime:  exit,
		Status:     domain.StatusOpen,
	}

	s := Aggregate([]*domain.Trade{open, closedTrade(50, exit)})

	if s.TotalTrades != 1 {
		t.Errorf("Expected 1 total trade, got %d", s.TotalTrades)
	}
	if s.TotalPnL != 50 {
		t.Errorf("Expected 50 total PnL, got %f", s.TotalPnL)
	}
}

func TestAggregateAllBreakeven(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	trades := []*domain.Trade{
		closedTrade(0, exit),
		closedTrade(0, exit.Add(time.Hour)),
	}

	s := Aggregate(trades)

	if s.TotalTrades != 2 {
		t.Errorf("Expected 2 total trades, got %d", s.TotalTrades)
	}
	if s.WinRate != 0 {
		t.Errorf("Expected 0 win rate, got %f", s.WinRate)
	}
	if s.LossTrades != 0 {
		t.Errorf("Expected 0 losing trades, got %d", s.LossTrades)
	}
	if s.ProfitFactor != 0 {
		t.Errorf("Expected 0 profit factor, got %f", s.ProfitFactor)
	}
}

func TestAggregateProfitFactorCap(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	trades := []*domain.Trade{
		closedTrade(500, exit),
		closedTrade(250, exit.Add(time.Hour)),
	}

	s := Aggregate(trades)

	if s.ProfitFactor != ProfitFactorCap {
		t.Errorf("Expected capped profit factor %f with no losers, got %f", ProfitFactorCap, s.ProfitFactor)
	}
}

func TestComputeCombinesAllMetrics(t *testing.T) {
	now := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		closedTrade(100, now.Add(-26*time.Hour)),
		closedTrade(-40, now.Add(-2*time.Hour)),
	}

	r := Compute(trades, 7, now)

	if r.WindowDays != 7 {
		t.Errorf("Expected window of 7 days, got %d", r.WindowDays)
	}
	if r.Summary.TotalTrades != 2 {
		t.Errorf("Expected 2 total trades, got %d", r.Summary.TotalTrades)
	}
	if len(r.Daily) != 7 {
		t.Errorf("Expected 7 daily buckets, got %d", len(r.Daily))
	}
	if len(r.Curve) != 2 {
		t.Errorf("Expected 2 curve points, got %d", len(r.Curve))
	}
	if r.Streaks.CurrentLoss != 1 {
		t.Errorf("Expected current loss streak of 1, got %d", r.Streaks.CurrentLoss)
	}
}
