package sqllog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.Log(context.Background(), sqldblogger.LevelDebug, "ExecContext", map[string]interface{}{"sql": "SELECT 1"})
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg=ExecContext`)
	assert.Contains(t, buf.String(), `sql="SELECT 1"`)

	buf.Reset()
	l.Log(context.Background(), sqldblogger.LevelError, "QueryContext", nil)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, slogLevel(sqldblogger.LevelError))
	assert.Equal(t, slog.LevelInfo, slogLevel(sqldblogger.LevelInfo))
	assert.Equal(t, slog.LevelDebug, slogLevel(sqldblogger.LevelDebug))
	assert.Equal(t, slog.LevelDebug, slogLevel(sqldblogger.LevelTrace))
}
