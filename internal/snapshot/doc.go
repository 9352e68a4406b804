// Package snapshot holds the value helpers the history engine is built on:
// structural equality, shallow patch merging, deep copies, and a canonical
// flattened form used to diff two snapshots of a record.
//
// Values are treated as JSON documents. Two values are equal when their JSON
// encodings decode to the same document, so object key order never matters
// and nested objects and arrays are compared element by element.
package snapshot
