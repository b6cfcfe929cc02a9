package model

// StockStatus is the only stock information ever shown to the model or the
// end user. Exact counts stay server-side.
type StockStatus string

const (
	StockUnavailable StockStatus = "Non disponible"
	StockLimited     StockStatus = "Bientôt saturé"
	StockAvailable   StockStatus = "Disponible"
)

// AvailabilityOf derives the status tier from a raw stock count.
// Unavailable: stock <= 0, Limited: 1..3, Available: > 3.
func AvailabilityOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockUnavailable
	case stock <= 3:
		return StockLimited
	default:
		return StockAvailable
	}
}
