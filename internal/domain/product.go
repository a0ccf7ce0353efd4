package domain

// Product is a sellable access-code tier. Price is in minor currency units.
type Product struct {
	ID           string
	Name         string
	DurationDays int
	Price        int64
}

// ProductStock pairs a product with its live unsold-code count.
type ProductStock struct {
	Product
	StockCount int
}
