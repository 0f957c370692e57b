// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key/value store interfaces the state layer is built on.
package kv

// Getter reads values by key.
type Getter interface {
	// Get returns the value for the given key.
	// A missing key yields an error checkable via IsNotFound.
	Get(key []byte) ([]byte, error)
	IsNotFound(error) bool
}

// Putter writes and deletes values by key.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	NewBatch() Batch
}

// Batch accumulates put/delete ops and applies them atomically on Write.
type Batch interface {
	Putter
	Write() error
}

// GetPutter combines read and write access.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser is a GetPutter owning its backing resources.
type GetPutCloser interface {
	GetPutter
	Close() error
}
