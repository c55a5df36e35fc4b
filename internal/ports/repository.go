package ports

import (
	"context"

	"tradejournal/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journaled trades.
type TradeRepository interface {
	// CreateTrade saves a new trade and returns its assigned ID.
	CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error)
	// UpdateTrade modifies an existing trade.
	UpdateTrade(ctx context.Context, trade *domain.Trade) error
	// FindTradeByID retrieves a trade by its unique ID.
	// Returns nil, nil if not found.
	FindTradeByID(ctx context.Context, id int64) (*domain.Trade, error)
	// FindAllTrades retrieves all trades, ordered by entry time ascending.
	FindAllTrades(ctx context.Context) ([]*domain.Trade, error)
	// FindTradesBySymbol retrieves the most recent trades for a symbol, up to a limit.
	FindTradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
	// DeleteTrade removes a trade by ID.
	DeleteTrade(ctx context.Context, id int64) error
}

// SettingsRepository defines the interface for journal configuration entities
// (commission plans, strategies, markets) and account-wide preferences.
type SettingsRepository interface {
	// CreateCommissionPlan saves a new plan and returns its assigned ID.
	CreateCommissionPlan(ctx context.Context, plan *domain.CommissionPlan) (int64, error)
	// FindCommissionPlanByName retrieves a plan by its unique name.
	// Returns nil, nil if not found.
	FindCommissionPlanByName(ctx context.Context, name string) (*domain.CommissionPlan, error)
	// ListCommissionPlans retrieves all plans, ordered by name.
	ListCommissionPlans(ctx context.Context) ([]*domain.CommissionPlan, error)

	// CreateStrategy saves a new strategy label and returns its assigned ID.
	CreateStrategy(ctx context.Context, strategy *domain.Strategy) (int64, error)
	// ListStrategies retrieves all strategies, ordered by name.
	ListStrategies(ctx context.Context) ([]*domain.Strategy, error)

	// CreateMarket saves a new market and returns its assigned ID.
	CreateMarket(ctx context.Context, market *domain.Market) (int64, error)
	// ListMarkets retrieves all markets, ordered by code.
	ListMarkets(ctx context.Context) ([]*domain.Market, error)

	// GetAccountSettings retrieves the journal-wide preferences.
	// Returns nil, nil if none were saved yet.
	GetAccountSettings(ctx context.Context) (*domain.AccountSettings, error)
	// SaveAccountSettings creates or replaces the journal-wide preferences.
	SaveAccountSettings(ctx context.Context, settings *domain.AccountSettings) error
}
