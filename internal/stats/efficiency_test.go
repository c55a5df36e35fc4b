package stats

import (
	"testing"
	"time"

	"tradejournal/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func excursionTrade(pnl, mae, mfe float64, exit time.Time) *domain.Trade {
	tr := closedTrade(pnl, exit)
	tr.MaxAdversePrice = ptr(mae)
	tr.MaxFavorablePrice = ptr(mfe)
	return tr
}

func TestComputeEfficiencyWinner(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	// Winner: full MAE recovery credit, captured 50 of 200 favorable.
	e := ComputeEfficiency([]*domain.Trade{excursionTrade(50, 80, 200, exit)})

	if e.EligibleTrades != 1 {
		t.Fatalf("Expected 1 eligible trade, got %d", e.EligibleTrades)
	}
	if e.MAERecovery != 100 {
		t.Errorf("Expected 100 MAE recovery for a winner, got %f", e.MAERecovery)
	}
	if e.MFECapture != 25 {
		t.Errorf("Expected 25 MFE capture, got %f", e.MFECapture)
	}
}

func TestComputeEfficiencyLoserClamped(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	// Loss beyond the recorded MAE clamps to 0, not -0.5.
	e := ComputeEfficiency([]*domain.Trade{excursionTrade(-150, 100, 200, exit)})

	if e.MAERecovery != 0 {
		t.Errorf("Expected clamped 0 MAE recovery, got %f", e.MAERecovery)
	}
	if e.MFECapture != 0 {
		t.Errorf("Expected 0 MFE capture for a loser, got %f", e.MFECapture)
	}
}

func TestComputeEfficiencyPartialRecovery(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	// Closed at -25 after a 100 adverse excursion: recovered 75%.
	e := ComputeEfficiency([]*domain.Trade{excursionTrade(-25, 100, 50, exit)})

	if e.MAERecovery != 75 {
		t.Errorf("Expected 75 MAE recovery, got %f", e.MAERecovery)
	}
}

func TestComputeEfficiencyZeroMAE(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	// No adverse movement at all: nothing to recover from, full credit even
	// on a breakeven close.
	e := ComputeEfficiency([]*domain.Trade{excursionTrade(0, 0, 100, exit)})

	if e.MAERecovery != 100 {
		t.Errorf("Expected 100 MAE recovery with zero MAE, got %f", e.MAERecovery)
	}
}

func TestComputeEfficiencyCaptureCapped(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	// PnL above the recorded MFE caps at 100%.
	e := ComputeEfficiency([]*domain.Trade{excursionTrade(250, 50, 200, exit)})

	if e.MFECapture != 100 {
		t.Errorf("Expected capped 100 MFE capture, got %f", e.MFECapture)
	}
}

func TestComputeEfficiencySkipsTradesWithoutExcursions(t *testing.T) {
	exit := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	plain := closedTrade(100, exit)
	partial := closedTrade(50, exit)
	partial.MaxAdversePrice = ptr(30) // MFE missing

	e := ComputeEfficiency([]*domain.Trade{plain, partial, excursionTrade(40, 20, 80, exit)})

	if e.EligibleTrades != 1 {
		t.Errorf("Expected 1 eligible trade, got %d", e.EligibleTrades)
	}
}

func TestComputeEfficiencyEmpty(t *testing.T) {
	e := ComputeEfficiency(nil)
	if e.MAERecovery != 0 || e.MFECapture != 0 || e.EligibleTrades != 0 {
		t.Errorf("Expected zeroed efficiency over no eligible trades, got %+v", e)
	}
}
