package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBuffer(t *testing.T) {
	empty, err := checkBuffer(true, 0)
	assert.NoError(t, err)
	assert.True(t, empty)

	empty, err = checkBuffer(false, 3)
	assert.NoError(t, err)
	assert.False(t, empty)

	_, err = checkBuffer(false, -1)
	assert.Error(t, err)
	_, err = checkBuffer(true, 2)
	assert.EqualError(t, err, "null pointer for non-empty slice")
}
