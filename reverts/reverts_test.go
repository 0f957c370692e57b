// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertsWrapped(t *testing.T) {
	wrapped := errors.Wrap(ErrStakeLimit, "submit")
	assert.True(t, IsRevertErr(wrapped))
	assert.False(t, IsAssertErr(wrapped))
}

func Test_Asserts(t *testing.T) {
	assertErr := NewAssert("cl validators regression")
	assert.Equal(t, "cl validators regression", assertErr.Error())

	assert.True(t, IsAssertErr(assertErr))
	assert.False(t, IsRevertErr(assertErr))
	assert.False(t, IsAssertErr(nil))
	assert.False(t, IsAssertErr(ErrStakingPaused))
}
