// Package session holds the session identifier a client presents to guarded
// actions and offers stores to keep identifiers across client instances.
package session
