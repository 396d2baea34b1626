package gameerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReject(t *testing.T) {
	err := Reject("play_card", "player %s is not the active player", "bob")

	assert.True(t, IsRejection(err))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "play_card: player bob is not the active player", err.Error())
	assert.Equal(t, "player bob is not the active player", Reason(err))

	wrapped := fmt.Errorf("chain: %w", err)
	assert.True(t, IsRejection(wrapped))
	assert.Equal(t, "player bob is not the active player", Reason(wrapped))
}

func TestInvalid(t *testing.T) {
	err := Invalid("missing %s", "table_state")

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, IsRejection(err))
	assert.Equal(t, "internal error", Reason(err))
	assert.Contains(t, err.Error(), "missing table_state")
}
