// Package store holds loaded clip payloads in memory, keyed by clip name.
package store
