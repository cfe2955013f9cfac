package chain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadResponse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		blockSize int
		wantLen   int
	}{
		{"pads up", `{"a":1}`, 16, 16},
		{"exact multiple", strings.Repeat("x", 32), 16, 32},
		{"spills into next block", strings.Repeat("x", 17), 16, 32},
		{"block size one", "abc", 1, 3},
		{"block size zero", "abc", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := PadResponse([]byte(tt.data), tt.blockSize)
			assert.Len(t, out, tt.wantLen)
			assert.Equal(t, tt.data, strings.TrimRight(string(out), " "))
		})
	}
}

func TestPadResponse_Empty(t *testing.T) {
	assert.Empty(t, PadResponse(nil, 16))
}

func TestPadResponse_JSONStillDecodes(t *testing.T) {
	padded := PadResponse([]byte(`{"count":42}`), 256)
	require.Len(t, padded, 256)

	var out struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(padded, &out))
	assert.Equal(t, 42, out.Count)
}
