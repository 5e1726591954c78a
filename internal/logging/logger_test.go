package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	return record
}

func TestLoggerWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zapcore.InfoLevel).With("component", "test")

	logger.Warn("bracket stalled", "match_id", int64(7), "error", errors.New("draw"))

	record := decodeLine(t, &buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "bracket stalled", record["msg"])
	assert.Equal(t, "test", record["component"])
	assert.EqualValues(t, 7, record["match_id"])
	assert.Equal(t, "draw", record["error"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zapcore.WarnLevel)

	logger.Info("ignored")
	assert.Zero(t, buf.Len())
}

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zapcore.InfoLevel)

	var ctx context.Context
	handler := chimiddleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	logger.InfoContext(ctx, "handled")
	record := decodeLine(t, &buf)
	assert.NotEmpty(t, record["request_id"])
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: " INFO ", want: zapcore.InfoLevel},
		{input: "warn", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "loud", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, level)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(&buf, zapcore.InfoLevel))
	t.Cleanup(func() { SetDefault(nil) })

	handler := chimiddleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/matches/3/result", nil))

	record := decodeLine(t, &buf)
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "http request", record["msg"])
	assert.Equal(t, "POST", record["method"])
	assert.Equal(t, "/api/matches/3/result", record["path"])
	assert.EqualValues(t, http.StatusTeapot, record["status"])
	assert.EqualValues(t, len("short and stout"), record["bytes"])
	assert.NotEmpty(t, record["request_id"])
}

func TestRequestLoggerServerErrors(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(&buf, zapcore.InfoLevel))
	t.Cleanup(func() { SetDefault(nil) })

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	record := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.EqualValues(t, http.StatusInternalServerError, record["status"])
}
