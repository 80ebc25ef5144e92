package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/slotgate/core/model"
)

func TestLogsFlagsQuery(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q, err := logsFlags{since: time.Hour, operation: "generate", status: "error", limit: 5}.query(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-time.Hour), q.Start)
	assert.Equal(t, "generate", q.Operation)
	require.NotNil(t, q.Status)
	assert.Equal(t, model.LogError, *q.Status)
	assert.Equal(t, 5, q.Limit)

	_, err = logsFlags{start: "yesterday"}.query(now)
	assert.Error(t, err)
	_, err = logsFlags{status: "maybe"}.query(now)
	assert.Error(t, err)
	_, err = logsFlags{limit: -1}.query(now)
	assert.Error(t, err)
}

func TestWriteEntries(t *testing.T) {
	entries := []model.LogEntry{{DispatchID: "d1", Operation: "generate", Status: model.LogSuccess}}

	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, "yaml", entries))
	assert.Contains(t, buf.String(), "dispatch_id: d1")

	buf.Reset()
	require.NoError(t, writeEntries(&buf, "json", nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	assert.Error(t, writeEntries(&buf, "xml", entries))
}

func TestReadBody(t *testing.T) {
	b, err := readBody(strings.NewReader(`{"a":1}`), "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = readBody(nil, "{not json")
	assert.Error(t, err)
}
