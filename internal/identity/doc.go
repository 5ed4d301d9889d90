// Package identity defines the canonical identity record every external
// source normalizes into, and the deterministic OID scheme used when a
// source has no stable identifier of its own.
//
// A Record is always complete: Roles and Attributes marshal as empty
// lists rather than null, and every string field is present.
//
// Listing results are wrapped in a UserList whose pagination links are
// always null; external sources return their full result set in one page.
package identity
