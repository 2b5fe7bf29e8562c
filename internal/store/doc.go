// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Every store exposes a WithTx method so that services can compose several
// writes inside RunInTransaction.
package store
