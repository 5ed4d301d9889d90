// Package models contains the gorm models of the local identity store.
//
// A User is keyed by its OID (Username). Users provisioned from an external
// source carry ExternalSource (the binding name) and ExternalID (the source
// local identifier); these two fields are the only durable link between the
// canonical identity and the source record.
//
// UserAttribute rows are never hard-deleted. Disabling an attribute sets
// DisabledAt; the active attribute set is the rows where DisabledAt is nil.
package models
