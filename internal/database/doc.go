// Package database implements the append-only listing store.
//
// The store keeps every extracted version of every listing in a single
// SQLite table; the autoincrement row id orders versions within an
// identity. Reads either collapse to the newest version per identity
// (Latest) or return an identity's full history (History). MergeFrom
// folds a second store's identities into this one without ever
// touching identities already present.
package database
