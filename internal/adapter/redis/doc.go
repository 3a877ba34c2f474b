// Package redis implements the shared classification cache on top of Redis,
// fronted by an in-process TTL cache, plus the client hooks that guard and
// instrument every Redis command.
package redis
