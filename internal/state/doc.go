// Package state owns the console's client-side copy of server data.
//
// # Collections
//
// A Collection holds the state of one resource: the current page of items,
// the selected item, pagination, the last error and a loading flag. All
// network access for the resource goes through it, so screens read
// snapshots and never talk to the API directly.
//
//	UI command goroutine            Collection
//	┌──────────────────┐           ┌──────────────────────┐
//	│ coll.List(ctx,q) │──begin───→│ pending++, id++      │
//	│      ↓ (HTTP)    │           │                      │
//	│   result/error   │──finish──→│ apply if id current  │
//	└──────────────────┘           └──────────────────────┘
//	                                          ↓
//	                             coll.Snapshot() → render
//
// Writes patch the local list instead of refetching: Create prepends the
// echoed entity, Update replaces by id in place, Delete filters by id. The
// snapshot is then flagged Patched until the next List or Refresh.
//
// Reads carry a per-kind request id. A List or Show that resolves after a
// newer one of the same kind was dispatched is dropped and its caller gets
// ErrSuperseded. Loading is derived from an in-flight counter so overlapping
// calls never clear each other's flag.
//
// On failure items, selection and pagination are left as they were and
// Err records the error. A success clears Err.
//
// # Store
//
// Store is the registry of collections plus Auth. It is constructed once by
// the app package and passed to the UI; there is no package-level state.
//
// # Auth
//
// Auth holds the signed-in profile and mirrors every change to the session
// file, the console's equivalent of browser local storage.
package state
