package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/MikhailRaia/utility-suite/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, path string) *Storage {
	t.Helper()

	s, err := NewStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return newTestStorage(t, filepath.Join(t.TempDir(), "storage.jsonl"))
	})
}

func TestStorage_ReplaysJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.jsonl")
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := NewStorage(path)
	require.NoError(t, err)

	require.NoError(t, s.Insert(ctx, storagetest.Shortlink("id-1", "keep", now)))
	require.NoError(t, s.Insert(ctx, storagetest.Shortlink("id-2", "drop", now)))
	require.NoError(t, s.IncrementClicks(ctx, "keep", 2))
	deleted, err := s.DeleteByID(ctx, "id-2")
	require.NoError(t, err)
	require.True(t, deleted)
	require.NoError(t, s.SaveStatus(ctx, model.StatusCheck{ID: "s1", ClientName: "monitor", Timestamp: now}))
	require.NoError(t, s.Close())

	reopened := newTestStorage(t, path)

	got, err := reopened.FindByCode(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)
	assert.True(t, now.Equal(got.CreatedAt))

	_, err = reopened.FindByCode(ctx, "drop")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	statuses, err := reopened.ListStatus(ctx, 10)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "monitor", statuses[0].ClientName)
}

func TestStorage_CorruptJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json\n"), 0644))

	_, err := NewStorage(path)
	assert.Error(t, err)
}

func TestStorage_PingAfterClose(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "storage.jsonl"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func TestStorage_TornTail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		tail      string
		wantCodes []string
	}{
		{
			name:      "Unterminated partial record is dropped",
			tail:      `{"op":"insert","shortlink":{"id":"2","orig`,
			wantCodes: []string{"first"},
		},
		{
			name:      "Unterminated complete record is kept",
			tail:      `{"op":"click","code":"first","delta":3}`,
			wantCodes: []string{"first"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "storage.jsonl")

			s, err := NewStorage(path)
			require.NoError(t, err)
			require.NoError(t, s.Insert(ctx, storagetest.Shortlink("id-1", "first", now)))
			require.NoError(t, s.Close())

			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
			require.NoError(t, err)
			_, err = f.WriteString(tt.tail)
			require.NoError(t, err)
			require.NoError(t, f.Close())

			reopened, err := NewStorage(path)
			require.NoError(t, err)
			for _, code := range tt.wantCodes {
				_, err := reopened.FindByCode(ctx, code)
				assert.NoError(t, err)
			}
			require.NoError(t, reopened.Insert(ctx, storagetest.Shortlink("id-3", "second", now)))
			require.NoError(t, reopened.Close())

			again := newTestStorage(t, path)
			for _, code := range append(tt.wantCodes, "second") {
				_, err := again.FindByCode(ctx, code)
				assert.NoError(t, err)
			}
		})
	}
}

func TestStorage_TornTailKeepsCompleteClick(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.jsonl")

	s, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, storagetest.Shortlink("id-1", "first", time.Now())))
	require.NoError(t, s.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"op":"click","code":"first","delta":3}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened := newTestStorage(t, path)
	got, err := reopened.FindByCode(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Clicks)
}

func TestStorage_CorruptMiddleLineFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.jsonl")
	journal := "{\"op\":\"insert\",\"shortlink\":{\"id\":\"2\",\"orig\n" +
		"{\"op\":\"click\",\"code\":\"first\",\"delta\":1}\n"
	require.NoError(t, os.WriteFile(path, []byte(journal), 0644))

	_, err := NewStorage(path)
	assert.ErrorContains(t, err, "failed to parse storage line 1")
}

func TestStorage_IncrementClicksFailureKeepsCount(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.jsonl")

	s, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, storagetest.Shortlink("id-1", "first", time.Now())))
	require.NoError(t, s.IncrementClicks(ctx, "first", 2))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.IncrementClicks(ctx, "first", 5), os.ErrClosed)

	got, err := s.FindByCode(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)
}
