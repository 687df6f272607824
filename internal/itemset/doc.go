// Package itemset holds the item dictionary and the in-memory transaction store.
//
// External item identifiers are canonicalized into Labels and bound to dense
// internal ids in [0, N). A Database is built once by Load and is read-only
// afterwards, so it can be shared by concurrent readers without locking.
//
// Two label kinds exist:
//   - int: base-10 signed 64-bit integers ("007" and "7" are one item)
//   - string: NFC-normalized text
package itemset
