package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithAndFrom(t *testing.T) {
	ctx := With(context.Background(), Identity{UserID: "u-1", Username: "alice", Role: "USER"})

	id, ok := From(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "USER", id.Role)
}

func TestFrom_Missing(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)

	_, ok = From(With(context.Background(), Identity{UserID: "u-1"}))
	assert.False(t, ok, "an identity without a username is not usable")
}
