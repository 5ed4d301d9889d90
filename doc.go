// Package main provides the entry point of authdata, an identity attribute
// service for federated login. It answers single user queries and user
// listings over a JSON API, resolving users from the local store or from
// the LDAP directories and HTTP APIs configured as sources, and provisions
// every externally resolved user locally under a salted pseudonymous OID.
package main
