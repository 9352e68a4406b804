// Package types defines the record kinds of an API configuration document,
// the Tracker protocol for change-tracked records, the Store and Table
// interfaces of the persistence collaborator, and the standard error values
// shared across apiconf.
package types
