package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy(false, false)
	require.NoError(t, err)
	assert.IsType(t, &KeepStrategy{}, s)

	s, err = NewStrategy(true, false)
	require.NoError(t, err)
	assert.IsType(t, &AcceptStrategy{}, s)

	s, err = NewStrategy(false, true)
	require.NoError(t, err)
	assert.IsType(t, &InteractiveStrategy{}, s)

	_, err = NewStrategy(true, true)
	assert.Error(t, err)
}

func TestNonInteractiveStrategies(t *testing.T) {
	c := Conflict{File: "f.go", MarkerID: "m"}

	res, err := (&KeepStrategy{}).Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, KeepExisting, res)

	res, err = (&AcceptStrategy{}).Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, AcceptProposed, res)
}
