package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStatesSortedByName(t *testing.T) {
	states, err := NewRepository().ListStates(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 36)
	assert.Equal(t, "Andaman and Nicobar Islands", states[0].Name)
	assert.Equal(t, "West Bengal", states[len(states)-1].Name)
}
