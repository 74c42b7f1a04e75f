package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]int{"count": 2}))

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
		Error   *JSONError     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Data["count"])
	assert.Nil(t, env.Error)
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New(errors.ErrConfig, "interval 100ms is too short", "Use at least 500ms")
	require.NoError(t, WriteJSONFromError(&buf, err))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeConfigInvalid, env.Error.Code)
	assert.Equal(t, "interval 100ms is too short", env.Error.Message)
	assert.Equal(t, "Use at least 500ms", env.Error.Suggestion)
}

func TestErrorToJSON(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "config",
			err:      errors.New(errors.ErrConfig, "bad config", ""),
			wantCode: ErrCodeConfigInvalid,
			wantMsg:  "bad config",
		},
		{
			name:     "state locked",
			err:      errors.WrapWithCode(state.ErrLocked, errors.ErrState, "State file is in use", ""),
			wantCode: ErrCodeStateLocked,
			wantMsg:  "State file is in use",
		},
		{
			name:     "state corrupt",
			err:      errors.New(errors.ErrState, "State file is corrupt", ""),
			wantCode: ErrCodeStateCorrupt,
			wantMsg:  "State file is corrupt",
		},
		{
			name:     "exec",
			err:      errors.New(errors.ErrExec, "netstat failed", ""),
			wantCode: ErrCodeCommandFailed,
			wantMsg:  "netstat failed",
		},
		{
			name:     "wifi",
			err:      errors.New(errors.ErrWifi, "airport failed", ""),
			wantCode: ErrCodeCommandFailed,
			wantMsg:  "airport failed",
		},
		{
			name:     "speed test",
			err:      errors.New(errors.ErrSpeedTest, "no speeds reported", ""),
			wantCode: ErrCodeSpeedTest,
			wantMsg:  "no speeds reported",
		},
		{
			name:     "plain error",
			err:      stderrors.New("boom"),
			wantCode: ErrCodeUnknown,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestErrorToJSONNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}
