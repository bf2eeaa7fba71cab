package main

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	first, err := generateSecret()
	require.NoError(t, err)

	raw, err := hex.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, secretKeyBytesLen)

	second, err := generateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
