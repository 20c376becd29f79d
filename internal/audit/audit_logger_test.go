package audit

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewAuditLogger(logger)

	t.Run("posted", func(t *testing.T) {
		hook.Reset()
		a.LogPosted(12, "BR-HQ-20250115-0001", 3, decimal.NewFromInt(500))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, EventPosted, entry.Data["event_type"])
		assert.Equal(t, int64(12), entry.Data["transaction_id"])
		assert.Equal(t, "500.00", entry.Data["amount"])

		_, err := uuid.Parse(entry.Data["event_id"].(string))
		assert.NoError(t, err)
	})

	t.Run("transition", func(t *testing.T) {
		hook.Reset()
		a.LogTransition(EventApproved, 12, "V-1", 4, "pending", "approved")

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "pending", entry.Data["from"])
		assert.Equal(t, "approved", entry.Data["to"])
	})

	t.Run("zero balance is still recorded", func(t *testing.T) {
		hook.Reset()
		a.LogBalance(7, decimal.Zero)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "0.00", entry.Data["amount"])
		assert.Equal(t, int64(7), entry.Data["account_id"])
	})

	t.Run("errors are warnings", func(t *testing.T) {
		hook.Reset()
		a.LogError("create", 0, 3, errors.New("disk full"))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "disk full", entry.Data["error"])
		assert.NotContains(t, entry.Data, "transaction_id")
	})

	t.Run("event ids are unique", func(t *testing.T) {
		hook.Reset()
		a.LogBalance(1, decimal.NewFromInt(1))
		a.LogBalance(1, decimal.NewFromInt(1))

		entries := hook.AllEntries()
		require.Len(t, entries, 2)
		assert.NotEqual(t, entries[0].Data["event_id"], entries[1].Data["event_id"])
	})
}
