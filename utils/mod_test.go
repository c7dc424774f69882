package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b", "b"}, "b"), "Should return the first match")
	require.Equal(t, -1, FindIndex([]int{1, 2}, 3), "Should return -1 when missing")
}

func TestClamp(t *testing.T) {
	require.Equal(t, 1.0, Clamp(1.5, 0.0, 1.0))
	require.Equal(t, 0, Clamp(-3, 0, 10))
	require.Equal(t, 4, Clamp(4, 0, 10))
}

func TestArgMax(t *testing.T) {
	require.Equal(t, -1, ArgMax([]float64{}))
	require.Equal(t, 1, ArgMax([]float64{0.5, 2, 2, -1}), "Should return the first maximum")
}
