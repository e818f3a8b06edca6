package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/resource"
	"github.com/five82/stockroom/internal/state"
)

// tab is a top-level view.
type tab int

const (
	tabDashboard tab = iota
	tabCategories
	tabProducts
	tabSales
	tabPurchases
	tabCompanies
	tabLogs
)

var tabOrder = []tab{tabDashboard, tabCategories, tabProducts, tabSales, tabPurchases, tabCompanies, tabLogs}

func (t tab) String() string {
	switch t {
	case tabCategories:
		return "categories"
	case tabProducts:
		return "products"
	case tabSales:
		return "sales"
	case tabPurchases:
		return "purchases"
	case tabCompanies:
		return "companies"
	case tabLogs:
		return "logs"
	default:
		return "dashboard"
	}
}

func (t tab) title() string {
	switch t {
	case tabCategories:
		return "1 Categories"
	case tabProducts:
		return "2 Products"
	case tabSales:
		return "3 Sales"
	case tabPurchases:
		return "4 Purchases"
	case tabCompanies:
		return "5 Companies"
	case tabLogs:
		return "L Logs"
	default:
		return "0 Dashboard"
	}
}

// location is the route reported to the API client while t is shown.
func (t tab) location() string {
	return "/" + t.String()
}

func parseTab(name string) tab {
	for _, t := range tabOrder {
		if t.String() == name {
			return t
		}
	}
	return tabDashboard
}

// adminOnly reports whether t is served from the admin API.
func (t tab) adminOnly() bool {
	return t == tabCompanies
}

// step moves delta positions through tabs, wrapping. A tab missing from
// tabs steps from the start.
func (t tab) step(tabs []tab, delta int) tab {
	n := len(tabs)
	if n == 0 {
		return t
	}
	idx := 0
	for i, candidate := range tabs {
		if candidate == t {
			idx = i
		}
	}
	return tabs[((idx+delta)%n+n)%n]
}

// collectionStatus is the lifecycle summary shown in the footer.
type collectionStatus struct {
	Loading bool
	Loaded  bool
	Err     error
	Count   int
	Updated time.Time
}

func statusOf[T resource.Record](s resource.State[T]) collectionStatus {
	return collectionStatus{Loading: s.Loading, Loaded: s.Loaded, Err: s.Err, Count: len(s.Items), Updated: s.LastUpdated}
}

// resourceView adapts one collection to the table, the form and the
// operations bound to its keys.
type resourceView struct {
	tab      tab
	singular string
	columns  []table.Column
	rows     func(state.Snapshot) ([]int64, []table.Row)
	status   func(state.Snapshot) collectionStatus
	fetch    func(ctx context.Context, store *state.Store) error

	// Editable views; nil disables the matching key.
	fields  func(store *state.Store, snap state.Snapshot, id int64) []fieldSpec
	save    func(ctx context.Context, store *state.Store, snap state.Snapshot, id int64, values []string) error
	remove  func(ctx context.Context, store *state.Store, id int64) error
	preview func(values []string) string

	// toggle flips the record's status and returns the toast for it.
	toggle func(store *state.Store, id int64) (string, func(context.Context) error, bool)
}

func money(v float64) string { return formatMoney(v) }
func itoa(v int64) string    { return strconv.FormatInt(v, 10) }

// validationError marks a form error caught before any request was issued.
type validationError struct{ err error }

func (v validationError) Error() string { return v.err.Error() }
func (v validationError) Unwrap() error { return v.err }

func resourceViews() map[tab]*resourceView {
	views := map[tab]*resourceView{
		tabCategories: {
			tab:      tabCategories,
			singular: "category",
			columns:  []table.Column{{Title: "ID", Width: 6}, {Title: "Name", Width: 40}},
			rows: func(s state.Snapshot) ([]int64, []table.Row) {
				ids := make([]int64, 0, len(s.Categories.Items))
				rows := make([]table.Row, 0, len(s.Categories.Items))
				for _, c := range s.Categories.Items {
					ids = append(ids, c.ID)
					rows = append(rows, table.Row{itoa(c.ID), c.Name})
				}
				return ids, rows
			},
			status: func(s state.Snapshot) collectionStatus { return statusOf(s.Categories) },
			fields: func(store *state.Store, _ state.Snapshot, id int64) []fieldSpec {
				var c api.Category
				if id != 0 {
					c, _ = store.Categories.Find(id)
				}
				return []fieldSpec{{Label: "Name", Value: c.Name}}
			},
			save: func(ctx context.Context, store *state.Store, _ state.Snapshot, id int64, values []string) error {
				in, err := buildCategoryInput(values)
				if err != nil {
					return validationError{err}
				}
				if id == 0 {
					_, err = store.Categories.Add(ctx, in)
				} else {
					_, err = store.Categories.Update(ctx, id, in)
				}
				return err
			},
			remove: func(ctx context.Context, store *state.Store, id int64) error {
				_, err := store.Categories.Remove(ctx, id)
				return err
			},
			fetch: func(ctx context.Context, store *state.Store) error {
				_, err := store.Categories.Fetch(ctx)
				return err
			},
		},
		tabProducts: {
			tab:      tabProducts,
			singular: "product",
			columns: []table.Column{
				{Title: "ID", Width: 6}, {Title: "Name", Width: 24}, {Title: "Category", Width: 16},
				{Title: "SKU", Width: 12}, {Title: "Price", Width: 10}, {Title: "Qty", Width: 6}, {Title: "Description", Width: 28},
			},
			rows: func(s state.Snapshot) ([]int64, []table.Row) {
				ids := make([]int64, 0, len(s.Products.Items))
				rows := make([]table.Row, 0, len(s.Products.Items))
				for _, p := range s.Products.Items {
					ids = append(ids, p.ID)
					rows = append(rows, table.Row{
						itoa(p.ID), p.Name, s.CategoryName(p.CategoryID), p.SKU,
						money(p.Price), strconv.Itoa(p.Qty), truncate(p.Description, 28),
					})
				}
				return ids, rows
			},
			status: func(s state.Snapshot) collectionStatus { return statusOf(s.Products) },
			fields: func(store *state.Store, s state.Snapshot, id int64) []fieldSpec {
				var p api.Product
				found := false
				if id != 0 {
					p, found = store.Products.Find(id)
				}
				specs := []fieldSpec{
					{Label: "Name"},
					{Label: "Category", Kind: fieldCategory},
					{Label: "SKU"},
					{Label: "Price", Kind: fieldMoney},
					{Label: "Qty", Kind: fieldQty},
					{Label: "Description", Optional: true},
				}
				if found {
					specs[0].Value = p.Name
					specs[1].Value = s.CategoryName(p.CategoryID)
					specs[2].Value = p.SKU
					specs[3].Value = strconv.FormatFloat(p.Price, 'f', -1, 64)
					specs[4].Value = strconv.Itoa(p.Qty)
					specs[5].Value = p.Description
				}
				return specs
			},
			save: func(ctx context.Context, store *state.Store, snap state.Snapshot, id int64, values []string) error {
				in, err := buildProductInput(values, snap.Categories.Items)
				if err != nil {
					return validationError{err}
				}
				if id == 0 {
					_, err = store.Products.Add(ctx, in)
				} else {
					_, err = store.Products.Update(ctx, id, in)
				}
				return err
			},
			remove: func(ctx context.Context, store *state.Store, id int64) error {
				_, err := store.Products.Remove(ctx, id)
				return err
			},
			fetch: func(ctx context.Context, store *state.Store) error {
				_, err := store.Products.Fetch(ctx)
				return err
			},
		},
		tabSales:     lineView(tabSales, "sale", func(s state.Snapshot) []api.Line { return salesLines(s.Sales.Items) }, func(s state.Snapshot) collectionStatus { return statusOf(s.Sales) }, saleOps{}),
		tabPurchases: lineView(tabPurchases, "purchase", func(s state.Snapshot) []api.Line { return purchaseLines(s.Purchases.Items) }, func(s state.Snapshot) collectionStatus { return statusOf(s.Purchases) }, purchaseOps{}),
		tabCompanies: companiesView(),
	}
	return views
}

func companiesView() *resourceView {
	return &resourceView{
		tab:      tabCompanies,
		singular: "company",
		columns: []table.Column{
			{Title: "ID", Width: 6}, {Title: "Username", Width: 20}, {Title: "Company", Width: 28}, {Title: "Status", Width: 10},
		},
		rows: func(s state.Snapshot) ([]int64, []table.Row) {
			ids := make([]int64, 0, len(s.Companies.Items))
			rows := make([]table.Row, 0, len(s.Companies.Items))
			for _, c := range s.Companies.Items {
				ids = append(ids, c.ID)
				rows = append(rows, table.Row{itoa(c.ID), c.Username, c.CompanyName, companyStatus(c.Active)})
			}
			return ids, rows
		},
		status: func(s state.Snapshot) collectionStatus { return statusOf(s.Companies) },
		fetch: func(ctx context.Context, store *state.Store) error {
			_, err := store.Companies.Fetch(ctx)
			return err
		},
		toggle: func(store *state.Store, id int64) (string, func(context.Context) error, bool) {
			c, ok := store.Companies.Find(id)
			if !ok {
				return "", nil, false
			}
			verb := "Activated"
			if c.Active {
				verb = "Deactivated"
			}
			name := c.CompanyName
			if name == "" {
				name = c.Username
			}
			return verb + " " + name, func(ctx context.Context) error {
				_, err := store.SetCompanyActive(ctx, id, !c.Active)
				return err
			}, true
		},
	}
}

func companyStatus(active bool) string {
	if active {
		return "active"
	}
	return "disabled"
}

// lineOps binds the shared sale/purchase view to its collection.
type lineOps interface {
	add(ctx context.Context, store *state.Store, in api.LineInput) error
	update(ctx context.Context, store *state.Store, id int64, in api.LineInput) error
	remove(ctx context.Context, store *state.Store, id int64) error
	fetch(ctx context.Context, store *state.Store) error
	find(store *state.Store, id int64) (api.Line, bool)
}

type saleOps struct{}

func (saleOps) add(ctx context.Context, s *state.Store, in api.LineInput) error {
	_, err := s.Sales.Add(ctx, in)
	return err
}
func (saleOps) update(ctx context.Context, s *state.Store, id int64, in api.LineInput) error {
	_, err := s.Sales.Update(ctx, id, in)
	return err
}
func (saleOps) remove(ctx context.Context, s *state.Store, id int64) error {
	_, err := s.Sales.Remove(ctx, id)
	return err
}
func (saleOps) fetch(ctx context.Context, s *state.Store) error {
	_, err := s.Sales.Fetch(ctx)
	return err
}
func (saleOps) find(s *state.Store, id int64) (api.Line, bool) {
	sale, ok := s.Sales.Find(id)
	return api.Line(sale), ok
}

type purchaseOps struct{}

func (purchaseOps) add(ctx context.Context, s *state.Store, in api.LineInput) error {
	_, err := s.Purchases.Add(ctx, in)
	return err
}
func (purchaseOps) update(ctx context.Context, s *state.Store, id int64, in api.LineInput) error {
	_, err := s.Purchases.Update(ctx, id, in)
	return err
}
func (purchaseOps) remove(ctx context.Context, s *state.Store, id int64) error {
	_, err := s.Purchases.Remove(ctx, id)
	return err
}
func (purchaseOps) fetch(ctx context.Context, s *state.Store) error {
	_, err := s.Purchases.Fetch(ctx)
	return err
}
func (purchaseOps) find(s *state.Store, id int64) (api.Line, bool) {
	p, ok := s.Purchases.Find(id)
	return api.Line(p), ok
}

func salesLines(items []api.Sale) []api.Line {
	out := make([]api.Line, len(items))
	for i, s := range items {
		out[i] = api.Line(s)
	}
	return out
}

func purchaseLines(items []api.Purchase) []api.Line {
	out := make([]api.Line, len(items))
	for i, p := range items {
		out[i] = api.Line(p)
	}
	return out
}

func lineView(t tab, singular string, lines func(state.Snapshot) []api.Line, status func(state.Snapshot) collectionStatus, ops lineOps) *resourceView {
	return &resourceView{
		tab:      t,
		singular: singular,
		columns: []table.Column{
			{Title: "ID", Width: 6}, {Title: "Item", Width: 30}, {Title: "Qty", Width: 6},
			{Title: "Price", Width: 10}, {Title: "Total", Width: 12},
		},
		rows: func(s state.Snapshot) ([]int64, []table.Row) {
			items := lines(s)
			ids := make([]int64, 0, len(items))
			rows := make([]table.Row, 0, len(items))
			for _, l := range items {
				ids = append(ids, l.ID)
				rows = append(rows, table.Row{itoa(l.ID), l.Item, strconv.Itoa(l.Qty), money(l.Price), money(l.Total)})
			}
			return ids, rows
		},
		status: status,
		fields: func(store *state.Store, _ state.Snapshot, id int64) []fieldSpec {
			specs := []fieldSpec{{Label: "Item"}, {Label: "Qty", Kind: fieldQty}, {Label: "Price", Kind: fieldMoney}}
			if id == 0 {
				return specs
			}
			if l, ok := ops.find(store, id); ok {
				specs[0].Value = l.Item
				specs[1].Value = strconv.Itoa(l.Qty)
				specs[2].Value = strconv.FormatFloat(l.Price, 'f', -1, 64)
			}
			return specs
		},
		save: func(ctx context.Context, store *state.Store, _ state.Snapshot, id int64, values []string) error {
			in, err := buildLineInput(values)
			if err != nil {
				return validationError{err}
			}
			if id == 0 {
				return ops.add(ctx, store, in)
			}
			return ops.update(ctx, store, id, in)
		},
		remove:  ops.remove,
		fetch:   ops.fetch,
		preview: linePreview,
	}
}

func describe(v *resourceView, id int64) string {
	return fmt.Sprintf("%s #%d", v.singular, id)
}
