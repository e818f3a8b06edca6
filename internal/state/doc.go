// Package state holds the four inventory collections shared by the poller
// and the UI.
//
// # Overview
//
// Store instantiates one resource.Collection per resource kind over a single
// API client:
//
//	Categories  /categories  api.Category
//	Products    /products    api.Product
//	Sales       /sales       api.Sale
//	Purchases   /purchases   api.Purchase
//
// The collections are independent. Each owns its items, loading flag and
// last error; the store never resolves references between them (a product's
// CategoryID stays an opaque number, Snapshot.CategoryName is a display
// helper for consumers).
//
// # Refresh
//
// RefreshAll fetches the collections the signed-in role works with,
// concurrently, and records the combined error. A company sees the four
// inventory collections; an admin sees /admin/companies, and a company is
// never sent there because the server would answer 403 and end the session.
// When every fetched collection fails the consecutive failure count
// grows, which the UI uses to show an offline banner:
//
//	store.RefreshAll(ctx)  // all ok      → ConsecutiveFailures = 0
//	store.RefreshAll(ctx)  // all failed  → ConsecutiveFailures = 1
//	store.RefreshAll(ctx)  // all failed  → ConsecutiveFailures = 2, IsOffline
//
// # Snapshots
//
// Snapshot copies every collection state. Copies are independent of the
// store, so the UI can read them while operations are in flight.
//
// Reset discards all local data; it is called when the session ends.
package state
