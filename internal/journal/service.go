// Package journal is the application service for the trading journal: it
// orchestrates trade entry and closing, settings management, CSV interchange
// and report generation over the repository and stats packages.
package journal

import (
	"context"
	"fmt"
	"time"

	"tradejournal/config"
	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
	"tradejournal/internal/stats"
)

// Service orchestrates the journal's operations.
type Service struct {
	cfg      *config.Config
	logger   ports.Logger
	trades   ports.TradeRepository
	settings ports.SettingsRepository
	reports  *stats.Cache
	now      func() time.Time // Injected for tests
}

// NewService creates a new application service instance.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	trades ports.TradeRepository,
	settings ports.SettingsRepository,
) (*Service, error) {
	if cfg == nil || logger == nil || trades == nil || settings == nil {
		return nil, fmt.Errorf("missing required dependencies for journal service")
	}
	if cfg.Journal.DefaultWindowDays < 1 {
		return nil, fmt.Errorf("configuration DefaultWindowDays must be at least 1")
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		trades:   trades,
		settings: settings,
		reports:  stats.NewCache(),
		now:      time.Now,
	}, nil
}

// LogTradeParams carries the fields for opening a new journal entry.
type LogTradeParams struct {
	Symbol     string
	Direction  domain.Direction
	Quantity   float64
	EntryPrice float64
	EntryTime  time.Time // Zero value means "now"
	Strategy   string
	Market     string
	Notes      string
}

// LogTrade validates and stores a new open trade.
func (s *Service) LogTrade(ctx context.Context, p LogTradeParams) (*domain.Trade, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", ports.ErrInvalidRequest)
	}
	if !p.Direction.IsValid() {
		return nil, fmt.Errorf("direction must be %q or %q: %w", domain.Long, domain.Short, ports.ErrInvalidRequest)
	}
	if p.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ports.ErrInvalidRequest)
	}
	if p.EntryPrice <= 0 {
		return nil, fmt.Errorf("entry price must be positive: %w", ports.ErrInvalidRequest)
	}
	entryTime := p.EntryTime
	if entryTime.IsZero() {
		entryTime = s.now()
	}

	trade := &domain.Trade{
		Symbol:     p.Symbol,
		Direction:  p.Direction,
		Quantity:   p.Quantity,
		EntryPrice: p.EntryPrice,
		EntryTime:  entryTime,
		Status:     domain.StatusOpen,
		Strategy:   p.Strategy,
		Market:     p.Market,
		Notes:      p.Notes,
	}

	if _, err := s.trades.CreateTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to store trade: %w", err)
	}
	s.logger.Info(ctx, "Trade logged", map[string]interface{}{
		"tradeID": trade.ID, "symbol": trade.Symbol, "direction": trade.Direction, "quantity": trade.Quantity,
	})
	return trade, nil
}

// CloseTradeParams carries the fields for closing an open trade.
type CloseTradeParams struct {
	ExitPrice      float64
	ExitTime       time.Time // Zero value means "now"
	CommissionPlan string    // Name of a stored plan; ignored when Commission is set
	Commission     *float64  // Explicit commission override
	// Optional excursion data in currency units.
	MaxAdversePrice   *float64
	MaxFavorablePrice *float64
	MaxDrawdown       *float64
}

// CloseTrade records the exit of an open trade and computes its realized
// P&L: direction-aware price difference times quantity, minus commission.
func (s *Service) CloseTrade(ctx context.Context, id int64, p CloseTradeParams) (*domain.Trade, error) {
	trade, err := s.trades.FindTradeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load trade %d: %w", id, err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	if trade.IsClosed() {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrTradeAlreadyClosed)
	}
	if p.ExitPrice <= 0 {
		return nil, fmt.Errorf("exit price must be positive: %w", ports.ErrInvalidRequest)
	}

	exitTime := p.ExitTime
	if exitTime.IsZero() {
		exitTime = s.now()
	}
	if exitTime.Before(trade.EntryTime) {
		return nil, fmt.Errorf("exit time precedes entry time: %w", ports.ErrInvalidRequest)
	}

	commission, err := s.resolveCommission(ctx, trade.Quantity, p)
	if err != nil {
		return nil, err
	}

	gross := (p.ExitPrice - trade.EntryPrice) * trade.Quantity
	if trade.Direction == domain.Short {
		gross = -gross
	}

	trade.ExitPrice = p.ExitPrice
	trade.ExitTime = exitTime
	trade.Status = domain.StatusClosed
	trade.Commission = commission
	trade.NetPnL = gross - commission
	trade.MaxAdversePrice = p.MaxAdversePrice
	trade.MaxFavorablePrice = p.MaxFavorablePrice
	trade.MaxDrawdown = p.MaxDrawdown

	if err := s.trades.UpdateTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to store closed trade %d: %w", id, err)
	}
	s.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID": trade.ID, "symbol": trade.Symbol, "netPnl": trade.NetPnL, "commission": commission,
	})
	return trade, nil
}

// resolveCommission picks the explicit override, then the named plan, then zero.
func (s *Service) resolveCommission(ctx context.Context, quantity float64, p CloseTradeParams) (float64, error) {
	if p.Commission != nil {
		if *p.Commission < 0 {
			return 0, fmt.Errorf("commission cannot be negative: %w", ports.ErrInvalidRequest)
		}
		return *p.Commission, nil
	}
	if p.CommissionPlan == "" {
		return 0, nil
	}
	plan, err := s.settings.FindCommissionPlanByName(ctx, p.CommissionPlan)
	if err != nil {
		return 0, fmt.Errorf("failed to load commission plan '%s': %w", p.CommissionPlan, err)
	}
	if plan == nil {
		return 0, fmt.Errorf("commission plan '%s': %w", p.CommissionPlan, ports.ErrNotFound)
	}
	return plan.Cost(quantity), nil
}

// ListTrades returns all journaled trades in entry order.
func (s *Service) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return s.trades.FindAllTrades(ctx)
}

// TradesBySymbol returns the most recent trades for a symbol.
func (s *Service) TradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", ports.ErrInvalidRequest)
	}
	if limit < 1 {
		limit = 50
	}
	return s.trades.FindTradesBySymbol(ctx, symbol, limit)
}

// GetTrade returns a single trade, or ErrNotFound.
func (s *Service) GetTrade(ctx context.Context, id int64) (*domain.Trade, error) {
	trade, err := s.trades.FindTradeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	return trade, nil
}

// DeleteTrade removes a trade from the journal.
func (s *Service) DeleteTrade(ctx context.Context, id int64) error {
	if err := s.trades.DeleteTrade(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// Report derives the full statistics report over all stored trades.
// windowDays < 1 falls back to the saved account preference, then the
// configured default. Reports are memoized per trade snapshot and window.
func (s *Service) Report(ctx context.Context, windowDays int) (stats.Report, error) {
	if windowDays < 1 {
		windowDays = s.defaultWindow(ctx)
	}

	trades, err := s.trades.FindAllTrades(ctx)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to load trades for report: %w", err)
	}
	return s.reports.Compute(trades, windowDays, s.now()), nil
}

func (s *Service) defaultWindow(ctx context.Context) int {
	settings, err := s.settings.GetAccountSettings(ctx)
	if err == nil && settings != nil && settings.DefaultWindowDays >= 1 {
		return settings.DefaultWindowDays
	}
	return s.cfg.Journal.DefaultWindowDays
}

// --- Settings operations ---

// AddCommissionPlan stores a new commission plan.
func (s *Service) AddCommissionPlan(ctx context.Context, plan *domain.CommissionPlan) error {
	if plan.Name == "" {
		return fmt.Errorf("plan name is required: %w", ports.ErrInvalidRequest)
	}
	if plan.PerTrade < 0 || plan.PerUnit < 0 {
		return fmt.Errorf("commission amounts cannot be negative: %w", ports.ErrInvalidRequest)
	}
	_, err := s.settings.CreateCommissionPlan(ctx, plan)
	return err
}

// ListCommissionPlans returns all stored plans.
func (s *Service) ListCommissionPlans(ctx context.Context) ([]*domain.CommissionPlan, error) {
	return s.settings.ListCommissionPlans(ctx)
}

// AddStrategy stores a new strategy label.
func (s *Service) AddStrategy(ctx context.Context, strategy *domain.Strategy) error {
	if strategy.Name == "" {
		return fmt.Errorf("strategy name is required: %w", ports.ErrInvalidRequest)
	}
	_, err := s.settings.CreateStrategy(ctx, strategy)
	return err
}

// ListStrategies returns all stored strategies.
func (s *Service) ListStrategies(ctx context.Context) ([]*domain.Strategy, error) {
	return s.settings.ListStrategies(ctx)
}

// AddMarket stores a new market.
func (s *Service) AddMarket(ctx context.Context, market *domain.Market) error {
	if market.Code == "" {
		return fmt.Errorf("market code is required: %w", ports.ErrInvalidRequest)
	}
	if market.Currency == "" {
		market.Currency = s.cfg.Journal.BaseCurrency
	}
	_, err := s.settings.CreateMarket(ctx, market)
	return err
}

// ListMarkets returns all stored markets.
func (s *Service) ListMarkets(ctx context.Context) ([]*domain.Market, error) {
	return s.settings.ListMarkets(ctx)
}

// AccountSettings returns the saved preferences, falling back to configured
// defaults when none were saved yet.
func (s *Service) AccountSettings(ctx context.Context) (*domain.AccountSettings, error) {
	settings, err := s.settings.GetAccountSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &domain.AccountSettings{
			BaseCurrency:      s.cfg.Journal.BaseCurrency,
			StartingBalance:   s.cfg.Journal.StartingBalance,
			DefaultWindowDays: s.cfg.Journal.DefaultWindowDays,
		}
	}
	return settings, nil
}

// SaveAccountSettings validates and stores the preferences.
func (s *Service) SaveAccountSettings(ctx context.Context, settings *domain.AccountSettings) error {
	if settings.BaseCurrency == "" {
		return fmt.Errorf("base currency is required: %w", ports.ErrInvalidRequest)
	}
	if settings.DefaultWindowDays < 1 {
		return fmt.Errorf("default window must be at least 1 day: %w", ports.ErrInvalidRequest)
	}
	if settings.StartingBalance < 0 {
		return fmt.Errorf("starting balance cannot be negative: %w", ports.ErrInvalidRequest)
	}
	return s.settings.SaveAccountSettings(ctx, settings)
}
