package domain

// Direction represents which way a trade was taken.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// IsValid reports whether the direction is one of the known values.
func (d Direction) IsValid() bool {
	return d == Long || d == Short
}

// TradeStatus represents the lifecycle state of a journaled trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)
