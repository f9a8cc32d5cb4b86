// Package statestore provides a path-addressable reactive key/value store.
//
// State is a nested mapping addressed by dot-delimited paths such as
// "data.filtered" or "ui.currentPage". Writes through Set and Update
// record an audit history entry and notify subscribers in a fixed order:
// first subscribers on the exact path (receiving the new and old value),
// then subscribers on each ancestor path from nearest to root (receiving
// the ancestor's current value, with no old value tracked), and finally
// wildcard subscribers (receiving the whole state). A panicking callback
// is recovered and logged; it never prevents later subscribers from
// running.
//
// Reads return deep copies: callers never hold references into the
// store's tree, and values they read are immutable snapshots. The store
// is safe for concurrent use; callbacks run outside the store lock,
// serialized per write.
//
// Stores are explicit instances seeded with an initial-state shape and
// constructed by the host application; there is no package-level
// singleton.
package statestore
