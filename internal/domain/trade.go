package domain

import "time"

// Trade represents a single journaled trade.
type Trade struct {
	ID         int64       // Unique identifier for the trade (usually from DB)
	Symbol     string      // Instrument traded (e.g., "AAPL", "ESZ5")
	Direction  Direction   // long or short
	Quantity   float64     // Size of the position
	EntryPrice float64     // Price at which the position was entered
	ExitPrice  float64     // Price at which the position was exited (0 while open)
	EntryTime  time.Time   // Timestamp when the position was entered
	ExitTime   time.Time   // Timestamp when the position was exited (zero value while open)
	Status     TradeStatus // Current status (open, closed)
	NetPnL     float64     // Realized profit and loss after commission (valid once closed)
	Commission float64     // Commission charged for the round trip
	Strategy   string      // Strategy tag (optional, references a settings entry)
	Market     string      // Market code (optional, references a settings entry)
	Notes      string      // Free-form journal notes

	// Excursion data in currency units, present only when the broker import
	// provides it (nullable in DB).
	MaxAdversePrice   *float64 `db:"max_adverse_price"`   // Largest unrealized loss before close (MAE)
	MaxFavorablePrice *float64 `db:"max_favorable_price"` // Largest unrealized gain before close (MFE)
	MaxDrawdown       *float64 `db:"max_drawdown"`        // Largest giveback from the trade's peak
}

// IsClosed reports whether the trade has been exited and carries realized P&L.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// HasExcursions reports whether both MAE and MFE were recorded for the trade.
func (t *Trade) HasExcursions() bool {
	return t.MaxAdversePrice != nil && t.MaxFavorablePrice != nil
}

// StatTime returns the timestamp used for date-keyed statistics: the exit
// time when set, the entry time otherwise. A zero return means the trade has
// no usable date and must be skipped by date-keyed aggregates.
func (t *Trade) StatTime() time.Time {
	if !t.ExitTime.IsZero() {
		return t.ExitTime
	}
	return t.EntryTime
}
