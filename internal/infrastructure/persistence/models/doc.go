// Package models holds the GORM table mappings for the ledger. Domain types
// carry no ORM tags; each model here has a FromDomain constructor and a
// ToDomain method, and repositories only ever hand domain values back.
//
// base.go holds the shared id/timestamp/version/owner columns, depreciation.go
// the schedules, assets, claims and capital works, and property.go properties,
// their ledger transactions and sales.
package models
