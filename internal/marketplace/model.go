package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// TypeAirtime is prepaid call credit.
	TypeAirtime = "airtime"
	// TypeData is a mobile data bundle.
	TypeData = "data"
)

// Product is a digital bundle available for purchase at a fixed price.
type Product struct {
	ID          uuid.UUID
	Name        string
	ProductType string
	Provider    string
	Value       decimal.Decimal
	Price       decimal.Decimal
	Active      bool
	CreatedAt   time.Time
}
