// Copyright (c) 2025 The Undine developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var g Goes
	var n int32
	for range 10 {
		g.Go(func() {
			atomic.AddInt32(&n, 1)
		})
	}
	g.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&n))

	select {
	case <-g.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}
