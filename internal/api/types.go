package api

// Category mirrors /categories records.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecordID returns the server-assigned identifier.
func (c Category) RecordID() int64 { return c.ID }

// CategoryInput is the body of category create and update requests.
type CategoryInput struct {
	Name string `json:"name"`
}

// Product mirrors /products records. CategoryID is an opaque reference.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CategoryID  int64   `json:"categoryId"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Qty         int     `json:"qty"`
	Description string  `json:"desc"`
}

// RecordID returns the server-assigned identifier.
func (p Product) RecordID() int64 { return p.ID }

// ProductInput is the body of product create and update requests.
type ProductInput struct {
	Name        string  `json:"name"`
	CategoryID  int64   `json:"categoryId"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Qty         int     `json:"qty"`
	Description string  `json:"desc"`
}

// Line is a sale or purchase entry.
type Line struct {
	ID    int64   `json:"id"`
	Item  string  `json:"item"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
	Total float64 `json:"total"`
}

// Sale mirrors /sales records.
type Sale Line

// RecordID returns the server-assigned identifier.
func (s Sale) RecordID() int64 { return s.ID }

// Purchase mirrors /purchases records.
type Purchase Line

// RecordID returns the server-assigned identifier.
func (p Purchase) RecordID() int64 { return p.ID }

// LineInput is the body of sale and purchase create and update requests.
type LineInput struct {
	Item  string  `json:"item"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
	Total float64 `json:"total"`
}

// NewLineInput precomputes Total from qty and price. The server's value is
// authoritative once it responds.
func NewLineInput(item string, qty int, price float64) LineInput {
	return LineInput{Item: item, Qty: qty, Price: price, Total: float64(qty) * price}
}

// Company is a registered company account, listed under /admin/companies.
type Company struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	CompanyName string `json:"companyName"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

// RecordID returns the server-assigned identifier.
func (c Company) RecordID() int64 { return c.ID }

// CompanyStatusInput activates or deactivates a company.
type CompanyStatusInput struct {
	Active bool `json:"active"`
}
