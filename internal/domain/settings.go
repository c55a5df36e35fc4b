package domain

// CommissionPlan defines how commission is charged for a round-trip trade.
type CommissionPlan struct {
	ID       int64
	Name     string  // Unique plan name referenced when closing trades
	PerTrade float64 // Flat amount per round trip
	PerUnit  float64 // Amount per unit of quantity
}

// Cost returns the commission for a trade of the given quantity.
func (p *CommissionPlan) Cost(quantity float64) float64 {
	return p.PerTrade + p.PerUnit*quantity
}

// Strategy is a user-defined label for grouping trades by approach.
type Strategy struct {
	ID          int64
	Name        string
	Description string
}

// Market is a user-defined venue or instrument class.
type Market struct {
	ID       int64
	Code     string // Short code used on trades (e.g., "NYSE", "CME")
	Name     string
	Currency string
}

// AccountSettings holds journal-wide user preferences. A single row exists
// per journal database.
type AccountSettings struct {
	BaseCurrency      string
	StartingBalance   float64
	DefaultWindowDays int // Reporting window used when the caller does not pick one
}
