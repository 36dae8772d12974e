package util

import (
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformSlice(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, TransformSlice([]int{1, 2, 3}, strconv.Itoa))
	assert.Empty(t, TransformSlice(nil, strconv.Itoa))
}

func TestCanonicalMapIter(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}

	var keys []string
	var values []int
	for k, v := range CanonicalMapIter(m) {
		keys = append(keys, k)
		values = append(values, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []int{1, 2, 3}, values)

	keys = nil
	for k := range CanonicalMapIter(m) {
		keys = append(keys, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, ParseLogLevel(name), name)
	}
}
