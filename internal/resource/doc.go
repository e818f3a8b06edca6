// Package resource keeps a local copy of one server-owned collection in sync
// with the inventory API.
//
// A Collection is created once per resource kind with its path and record
// type, and exposes Fetch, Add, Update and Remove. Each operation marks the
// collection as loading and clears the previous error when dispatched. On
// success the server response is merged into the local items:
//
//	Fetch   replace all items, keeping server order
//	Add     append the created record
//	Update  replace the record with the same id in place
//	Remove  drop the record with the same id
//
// On failure the items are left untouched and the error is recorded. The
// error is also returned to the caller; nothing is retried.
//
// Operations on one collection are not serialised. Every dispatch is numbered
// and only the most recently dispatched operation settles Loading and Err, so
// a slow earlier request cannot leave the collection loading forever or
// overwrite a newer error. Merges from every successful response are applied
// in the order responses arrive.
package resource
