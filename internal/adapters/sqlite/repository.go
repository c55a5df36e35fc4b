package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository and ports.SettingsRepository
// using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP DEFAULT NULL,
		status TEXT NOT NULL,
		net_pnl REAL DEFAULT NULL,
		commission REAL NOT NULL DEFAULT 0,
		strategy TEXT NOT NULL DEFAULT '',
		market TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		max_adverse_price REAL DEFAULT NULL,
		max_favorable_price REAL DEFAULT NULL,
		max_drawdown REAL DEFAULT NULL
	);

	CREATE TABLE IF NOT EXISTS commission_plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		per_trade REAL NOT NULL DEFAULT 0,
		per_unit REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS strategies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS markets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT 'USD'
	);

	CREATE TABLE IF NOT EXISTS account_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_currency TEXT NOT NULL,
		starting_balance REAL NOT NULL DEFAULT 0,
		default_window_days INTEGER NOT NULL DEFAULT 30
	);

	-- Indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_entry_time ON trades (symbol, entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades (status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- TradeRepository Implementation ---

const tradeColumns = `id, symbol, direction, quantity, entry_price, COALESCE(exit_price, 0),
	entry_time, exit_time, status, COALESCE(net_pnl, 0), commission, strategy, market, notes,
	max_adverse_price, max_favorable_price, max_drawdown`

// CreateTrade saves a new trade and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (symbol, direction, quantity, entry_price, exit_price, entry_time, exit_time,
	                    status, net_pnl, commission, strategy, market, notes,
	                    max_adverse_price, max_favorable_price, max_drawdown)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.Symbol, trade.Direction, trade.Quantity, trade.EntryPrice, nullFloat(trade.ExitPrice, trade.IsClosed()),
		trade.EntryTime, nullTime(trade.ExitTime), trade.Status, nullFloat(trade.NetPnL, trade.IsClosed()),
		trade.Commission, trade.Strategy, trade.Market, trade.Notes,
		nullPtr(trade.MaxAdversePrice), nullPtr(trade.MaxFavorablePrice), nullPtr(trade.MaxDrawdown))
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %w", trade.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id // Update the domain object with the ID
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol})
	return id, nil
}

// UpdateTrade modifies an existing trade based on its ID.
func (r *Repository) UpdateTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	UPDATE trades
	SET symbol = ?, direction = ?, quantity = ?, entry_price = ?, exit_price = ?, entry_time = ?,
	    exit_time = ?, status = ?, net_pnl = ?, commission = ?, strategy = ?, market = ?, notes = ?,
	    max_adverse_price = ?, max_favorable_price = ?, max_drawdown = ?
	WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		trade.Symbol, trade.Direction, trade.Quantity, trade.EntryPrice, nullFloat(trade.ExitPrice, trade.IsClosed()),
		trade.EntryTime, nullTime(trade.ExitTime), trade.Status, nullFloat(trade.NetPnL, trade.IsClosed()),
		trade.Commission, trade.Strategy, trade.Market, trade.Notes,
		nullPtr(trade.MaxAdversePrice), nullPtr(trade.MaxFavorablePrice), nullPtr(trade.MaxDrawdown),
		trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade ID %d: %w", trade.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update trade ID %d: %w", trade.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for update: %w", trade.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade updated", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol, "status": trade.Status})
	return nil
}

// FindTradeByID retrieves a trade by its unique ID.
func (r *Repository) FindTradeByID(ctx context.Context, id int64) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %d: %w", id, err)
	}
	return trade, nil
}

// FindAllTrades retrieves all trades, ordered by entry time ascending.
func (r *Repository) FindAllTrades(ctx context.Context) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades ORDER BY entry_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAllTrades: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// FindTradesBySymbol retrieves the most recent trades for a symbol, up to a limit.
func (r *Repository) FindTradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE symbol = ? ORDER BY entry_time DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindTradesBySymbol: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// DeleteTrade removes a trade by ID.
func (r *Repository) DeleteTrade(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// --- SettingsRepository Implementation ---

// CreateCommissionPlan saves a new plan and returns its assigned ID.
func (r *Repository) CreateCommissionPlan(ctx context.Context, plan *domain.CommissionPlan) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO commission_plans (name, per_trade, per_unit) VALUES (?, ?, ?)`,
		plan.Name, plan.PerTrade, plan.PerUnit)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("commission plan '%s': %w", plan.Name, ports.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("failed to insert commission plan '%s': %w", plan.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for commission plan '%s': %w", plan.Name, err)
	}
	plan.ID = id
	return id, nil
}

// FindCommissionPlanByName retrieves a plan by its unique name.
func (r *Repository) FindCommissionPlanByName(ctx context.Context, name string) (*domain.CommissionPlan, error) {
	plan := &domain.CommissionPlan{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, per_trade, per_unit FROM commission_plans WHERE name = ?`, name).
		Scan(&plan.ID, &plan.Name, &plan.PerTrade, &plan.PerUnit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query commission plan '%s': %w", name, err)
	}
	return plan, nil
}

// ListCommissionPlans retrieves all plans, ordered by name.
func (r *Repository) ListCommissionPlans(ctx context.Context) ([]*domain.CommissionPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, per_trade, per_unit FROM commission_plans ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query commission plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*domain.CommissionPlan, 0)
	for rows.Next() {
		plan := &domain.CommissionPlan{}
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.PerTrade, &plan.PerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan commission plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission plan rows: %w", err)
	}
	return plans, nil
}

// CreateStrategy saves a new strategy label and returns its assigned ID.
func (r *Repository) CreateStrategy(ctx context.Context, strategy *domain.Strategy) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO strategies (name, description) VALUES (?, ?)`,
		strategy.Name, strategy.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("strategy '%s': %w", strategy.Name, ports.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("failed to insert strategy '%s': %w", strategy.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for strategy '%s': %w", strategy.Name, err)
	}
	strategy.ID = id
	return id, nil
}

// ListStrategies retrieves all strategies, ordered by name.
func (r *Repository) ListStrategies(ctx context.Context) ([]*domain.Strategy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM strategies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	strategies := make([]*domain.Strategy, 0)
	for rows.Next() {
		s := &domain.Strategy{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rows: %w", err)
	}
	return strategies, nil
}

// CreateMarket saves a new market and returns its assigned ID.
func (r *Repository) CreateMarket(ctx context.Context, market *domain.Market) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO markets (code, name, currency) VALUES (?, ?, ?)`,
		market.Code, market.Name, market.Currency)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("market '%s': %w", market.Code, ports.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("failed to insert market '%s': %w", market.Code, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for market '%s': %w", market.Code, err)
	}
	market.ID = id
	return id, nil
}

// ListMarkets retrieves all markets, ordered by code.
func (r *Repository) ListMarkets(ctx context.Context) ([]*domain.Market, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, currency FROM markets ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	markets := make([]*domain.Market, 0)
	for rows.Next() {
		m := &domain.Market{}
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market rows: %w", err)
	}
	return markets, nil
}

// GetAccountSettings retrieves the journal-wide preferences.
func (r *Repository) GetAccountSettings(ctx context.Context) (*domain.AccountSettings, error) {
	s := &domain.AccountSettings{}
	err := r.db.QueryRowContext(ctx,
		`SELECT base_currency, starting_balance, default_window_days FROM account_settings WHERE id = 1`).
		Scan(&s.BaseCurrency, &s.StartingBalance, &s.DefaultWindowDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not saved yet
		}
		return nil, fmt.Errorf("failed to query account settings: %w", err)
	}
	return s, nil
}

// SaveAccountSettings creates or replaces the journal-wide preferences.
func (r *Repository) SaveAccountSettings(ctx context.Context, settings *domain.AccountSettings) error {
	const query = `
	INSERT INTO account_settings (id, base_currency, starting_balance, default_window_days)
	VALUES (1, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		base_currency = excluded.base_currency,
		starting_balance = excluded.starting_balance,
		default_window_days = excluded.default_window_days`

	_, err := r.db.ExecContext(ctx, query, settings.BaseCurrency, settings.StartingBalance, settings.DefaultWindowDays)
	if err != nil {
		return fmt.Errorf("failed to save account settings: %w", err)
	}
	r.logger.Debug(ctx, "Account settings saved", map[string]interface{}{"currency": settings.BaseCurrency})
	return nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var direction, status string
	var exitTime sql.NullTime
	var mae, mfe, mdd sql.NullFloat64
	err := s.Scan(
		&t.ID, &t.Symbol, &direction, &t.Quantity, &t.EntryPrice, &t.ExitPrice,
		&t.EntryTime, &exitTime, &status, &t.NetPnL, &t.Commission, &t.Strategy, &t.Market, &t.Notes,
		&mae, &mfe, &mdd)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Direction = domain.Direction(direction)
	t.Status = domain.TradeStatus(status)
	if exitTime.Valid {
		t.ExitTime = exitTime.Time
	}
	if mae.Valid {
		t.MaxAdversePrice = &mae.Float64
	}
	if mfe.Valid {
		t.MaxFavorablePrice = &mfe.Float64
	}
	if mdd.Valid {
		t.MaxDrawdown = &mdd.Float64
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullFloat(v float64, valid bool) sql.NullFloat64 {
	if !valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
