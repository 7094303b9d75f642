package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b", "b"}, "b"))
	require.Equal(t, -1, FindIndex([]int{1, 2}, 3))
	require.Equal(t, -1, FindIndex(nil, "x"))
}

func TestDedupe(t *testing.T) {
	require.Equal(t, []string{"chess", "sudoku"}, Dedupe([]string{"chess", "sudoku", "chess"}))
	require.Empty(t, Dedupe([]int(nil)))
}
