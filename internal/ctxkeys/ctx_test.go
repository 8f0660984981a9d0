package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	_, ok = UserID(WithUserID(context.Background(), ""))
	assert.False(t, ok)

	userID, ok := UserID(WithUserID(context.Background(), "u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", userID)
}
