package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"1h"`, want: time.Hour},
		{name: "compound string", input: `"15m30s"`, want: 15*time.Minute + 30*time.Second},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "null keeps zero", input: `null`, want: 0},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_InStruct(t *testing.T) {
	var cfg struct {
		Window Duration `json:"window"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"window":"15m"}`), &cfg))
	assert.Equal(t, 15*time.Minute, cfg.Window.Duration)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"window":"15m0s"}`, string(out))
}
