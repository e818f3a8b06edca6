package state

// Dashboard summarises the loaded collections.
type Dashboard struct {
	Categories     int
	Products       int
	Sales          int
	Purchases      int
	SalesTotal     float64
	PurchasesTotal float64
	StockUnits     int
	LowStock       int // products with qty at or below LowStockThreshold

	Companies       int
	ActiveCompanies int
}

// LowStockThreshold is the quantity at which a product counts as low stock.
const LowStockThreshold = 5

// Dashboard computes counts and totals from the snapshot.
func (s Snapshot) Dashboard() Dashboard {
	d := Dashboard{
		Categories: len(s.Categories.Items),
		Products:   len(s.Products.Items),
		Sales:      len(s.Sales.Items),
		Purchases:  len(s.Purchases.Items),
	}
	for _, sale := range s.Sales.Items {
		d.SalesTotal += sale.Total
	}
	for _, p := range s.Purchases.Items {
		d.PurchasesTotal += p.Total
	}
	for _, c := range s.Companies.Items {
		d.Companies++
		if c.Active {
			d.ActiveCompanies++
		}
	}
	for _, p := range s.Products.Items {
		d.StockUnits += p.Qty
		if p.Qty <= LowStockThreshold {
			d.LowStock++
		}
	}
	return d
}
