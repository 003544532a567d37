package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordStampsOccurredAt(t *testing.T) {
	var captured []any
	logger := &AuditLogger{exec: func(ctx context.Context, sql string, args ...any) error {
		captured = args
		return nil
	}}

	err := logger.Record(context.Background(), AuditLog{
		ActorID:  7,
		Action:   "client.assign",
		Entity:   "client",
		EntityID: "42",
	})
	require.NoError(t, err)
	require.Len(t, captured, 6)

	at, ok := captured[5].(time.Time)
	require.True(t, ok)
	require.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestRecordKeepsExplicitOccurredAt(t *testing.T) {
	var captured []any
	logger := &AuditLogger{exec: func(ctx context.Context, sql string, args ...any) error {
		captured = args
		return nil
	}}

	at := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	err := logger.Record(context.Background(), AuditLog{
		ActorID:  7,
		Action:   "grant.add",
		Entity:   "user",
		EntityID: "9",
		At:       at,
	})
	require.NoError(t, err)
	require.Equal(t, at, captured[5])
}

func TestRecordRejectsIncompleteEntry(t *testing.T) {
	logger := &AuditLogger{exec: func(ctx context.Context, sql string, args ...any) error {
		t.Fatal("exec should not be reached")
		return nil
	}}

	err := logger.Record(context.Background(), AuditLog{ActorID: 7, Action: "grant.add"})
	require.Error(t, err)
}
