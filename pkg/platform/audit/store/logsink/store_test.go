package logsink

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
)

func TestAppendLogsEvent(t *testing.T) {
	var buf bytes.Buffer
	s := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, s.Append(context.Background(), audit.Event{
		Action:     string(audit.EventCustomerCreated),
		CustomerID: "5",
		CPFHash:    "0011223344556677",
	}))

	out := buf.String()
	assert.Contains(t, out, `"action":"customer_created"`)
	assert.Contains(t, out, `"customer_id":"5"`)
	assert.Contains(t, out, `"cpf_hash":"0011223344556677"`)
}
