// Package credstore implements the credential store on PostgreSQL: identity
// records with bcrypt password hashes and exactly one live TOTP secret each.
// Identity creation provisions the first secret inline; rotation and
// password changes are single atomic UPDATEs. Schema migrations live in the
// migrations subdirectory and are applied through pkg/pg.
package credstore
