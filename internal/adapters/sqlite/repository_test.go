package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tradejournal-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func ptr(v float64) *float64 { return &v }

func TestRepository_CreateAndFindTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	entry := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	trade := &domain.Trade{
		Symbol:     "AAPL",
		Direction:  domain.Long,
		Quantity:   100,
		EntryPrice: 180.50,
		EntryTime:  entry,
		Status:     domain.StatusOpen,
		Strategy:   "breakout",
		Market:     "NASDAQ",
		Notes:      "gap and go",
	}

	id, err := repo.CreateTrade(ctx, trade)
	require.NoError(t, err)
	assert.Equal(t, id, trade.ID)

	found, err := repo.FindTradeByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "AAPL", found.Symbol)
	assert.Equal(t, domain.Long, found.Direction)
	assert.Equal(t, domain.StatusOpen, found.Status)
	assert.Equal(t, 100.0, found.Quantity)
	assert.Equal(t, "breakout", found.Strategy)
	assert.True(t, found.ExitTime.IsZero())
	assert.Nil(t, found.MaxAdversePrice)
	assert.Nil(t, found.MaxFavorablePrice)
}

func TestRepository_FindTradeByIDNotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	found, err := repo.FindTradeByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_UpdateTradeClosesIt(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	entry := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	trade := &domain.Trade{
		Symbol:     "ES",
		Direction:  domain.Short,
		Quantity:   2,
		EntryPrice: 5200,
		EntryTime:  entry,
		Status:     domain.StatusOpen,
	}
	_, err := repo.CreateTrade(ctx, trade)
	require.NoError(t, err)

	trade.ExitPrice = 5180
	trade.ExitTime = entry.Add(45 * time.Minute)
	trade.Status = domain.StatusClosed
	trade.NetPnL = 76.0
	trade.Commission = 4.0
	trade.MaxAdversePrice = ptr(120)
	trade.MaxFavorablePrice = ptr(300)

	require.NoError(t, repo.UpdateTrade(ctx, trade))

	found, err := repo.FindTradeByID(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.StatusClosed, found.Status)
	assert.Equal(t, 76.0, found.NetPnL)
	assert.Equal(t, 4.0, found.Commission)
	require.NotNil(t, found.MaxAdversePrice)
	assert.Equal(t, 120.0, *found.MaxAdversePrice)
	require.NotNil(t, found.MaxFavorablePrice)
	assert.Equal(t, 300.0, *found.MaxFavorablePrice)
	assert.Nil(t, found.MaxDrawdown)
}

func TestRepository_UpdateTradeNotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateTrade(context.Background(), &domain.Trade{
		ID:         999,
		Symbol:     "AAPL",
		Direction:  domain.Long,
		Quantity:   1,
		EntryPrice: 100,
		EntryTime:  time.Now(),
		Status:     domain.StatusOpen,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRepository_FindAllTradesOrdering(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Insert out of chronological order.
	for _, offset := range []int{2, 0, 1} {
		trade := &domain.Trade{
			Symbol:     "AAPL",
			Direction:  domain.Long,
			Quantity:   10,
			EntryPrice: 100,
			EntryTime:  base.AddDate(0, 0, offset),
			Status:     domain.StatusOpen,
		}
		_, err := repo.CreateTrade(ctx, trade)
		require.NoError(t, err)
	}

	trades, err := repo.FindAllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	for i := 1; i < len(trades); i++ {
		assert.True(t, trades[i].EntryTime.After(trades[i-1].EntryTime))
	}
}

func TestRepository_FindTradesBySymbol(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, symbol := range []string{"AAPL", "MSFT", "AAPL"} {
		trade := &domain.Trade{
			Symbol:     symbol,
			Direction:  domain.Long,
			Quantity:   10,
			EntryPrice: 100,
			EntryTime:  base.Add(time.Duration(i) * time.Hour),
			Status:     domain.StatusOpen,
		}
		_, err := repo.CreateTrade(ctx, trade)
		require.NoError(t, err)
	}

	trades, err := repo.FindTradesBySymbol(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	for _, tr := range trades {
		assert.Equal(t, "AAPL", tr.Symbol)
	}
}

func TestRepository_DeleteTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	trade := &domain.Trade{
		Symbol:     "AAPL",
		Direction:  domain.Long,
		Quantity:   10,
		EntryPrice: 100,
		EntryTime:  time.Now(),
		Status:     domain.StatusOpen,
	}
	id, err := repo.CreateTrade(ctx, trade)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTrade(ctx, id))

	found, err := repo.FindTradeByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.DeleteTrade(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRepository_CommissionPlans(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	plan := &domain.CommissionPlan{Name: "ib-stocks", PerTrade: 1.0, PerUnit: 0.005}

	_, err := repo.CreateCommissionPlan(ctx, plan)
	require.NoError(t, err)

	// Duplicate name is rejected.
	_, err = repo.CreateCommissionPlan(ctx, &domain.CommissionPlan{Name: "ib-stocks"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrDuplicateEntry))

	found, err := repo.FindCommissionPlanByName(ctx, "ib-stocks")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 0.005, found.PerUnit)

	missing, err := repo.FindCommissionPlanByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	plans, err := repo.ListCommissionPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestRepository_StrategiesAndMarkets(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.CreateStrategy(ctx, &domain.Strategy{Name: "breakout", Description: "opening range breakout"})
	require.NoError(t, err)
	_, err = repo.CreateStrategy(ctx, &domain.Strategy{Name: "breakout"})
	assert.True(t, errors.Is(err, ports.ErrDuplicateEntry))

	strategies, err := repo.ListStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "breakout", strategies[0].Name)

	_, err = repo.CreateMarket(ctx, &domain.Market{Code: "CME", Name: "Chicago Mercantile Exchange", Currency: "USD"})
	require.NoError(t, err)

	markets, err := repo.ListMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "CME", markets[0].Code)
}

func TestRepository_AccountSettings(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Nothing saved yet.
	settings, err := repo.GetAccountSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, repo.SaveAccountSettings(ctx, &domain.AccountSettings{
		BaseCurrency:      "USD",
		StartingBalance:   25000,
		DefaultWindowDays: 30,
	}))

	// Save again replaces the single row.
	require.NoError(t, repo.SaveAccountSettings(ctx, &domain.AccountSettings{
		BaseCurrency:      "EUR",
		StartingBalance:   10000,
		DefaultWindowDays: 14,
	}))

	settings, err = repo.GetAccountSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "EUR", settings.BaseCurrency)
	assert.Equal(t, 14, settings.DefaultWindowDays)
}
