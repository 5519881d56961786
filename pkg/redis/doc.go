// Package redis bootstraps the connection to the Redis instance backing the
// ephemeral session store: URL-based configuration from the environment,
// retried connect, and a readiness probe.
package redis
