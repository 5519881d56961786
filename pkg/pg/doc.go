// Package pg bootstraps the PostgreSQL layer behind the credential store:
// env-driven pool configuration, retried connect via pgx/v5, goose schema
// migrations, a readiness probe, and small error helpers for mapping
// SQLSTATE conditions to domain errors.
package pg
