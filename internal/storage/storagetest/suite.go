// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shortlink builds a local shortlink fixture.
func Shortlink(id, code string, createdAt time.Time) model.Shortlink {
	return model.Shortlink{
		ID:          id,
		OriginalURL: "https://example.com/" + code,
		ShortCode:   code,
		Provider:    model.ProviderLocal,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
}

// Run exercises newStore against the storage contract. newStore must return
// an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("Insert and find", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		link := Shortlink("id-1", "abc1234", time.Now())
		link.ShortURL = "https://is.gd/xyz"
		link.Provider = model.ProviderExternal

		require.NoError(t, s.Insert(ctx, link))

		got, err := s.FindByCode(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, link.ShortURL, got.ShortURL)
		assert.Equal(t, model.ProviderExternal, got.Provider)
		assert.Equal(t, int64(0), got.Clicks)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Find unknown code", func(t *testing.T) {
		s := newStore(t)

		_, err := s.FindByCode(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Duplicate code rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Insert(ctx, Shortlink("id-1", "dup", time.Now())))
		err := s.Insert(ctx, Shortlink("id-2", "dup", time.Now()))
		assert.ErrorIs(t, err, storage.ErrCodeExists)

		got, err := s.FindByCode(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, "id-1", got.ID)
	})

	t.Run("Concurrent inserts commit one code once", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.Insert(ctx, Shortlink(fmt.Sprintf("id-%d", i), "race", time.Now()))
			}(i)
		}
		wg.Wait()

		committed := 0
		for _, err := range errs {
			if err == nil {
				committed++
				continue
			}
			assert.ErrorIs(t, err, storage.ErrCodeExists)
		}
		assert.Equal(t, 1, committed)
	})

	t.Run("Increment clicks", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Insert(ctx, Shortlink("id-1", "clicky", time.Now())))

		require.NoError(t, s.IncrementClicks(ctx, "clicky", 1))
		require.NoError(t, s.IncrementClicks(ctx, "clicky", 3))

		got, err := s.FindByCode(ctx, "clicky")
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Clicks)

		assert.ErrorIs(t, s.IncrementClicks(ctx, "nope", 1), storage.ErrNotFound)
	})

	t.Run("Delete by id", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Insert(ctx, Shortlink("id-1", "gone", time.Now())))

		deleted, err := s.DeleteByID(ctx, "id-1")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = s.FindByCode(ctx, "gone")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		deleted, err = s.DeleteByID(ctx, "id-1")
		require.NoError(t, err)
		assert.False(t, deleted)

		require.NoError(t, s.Insert(ctx, Shortlink("id-2", "gone", time.Now())))
	})

	t.Run("List newest first with limit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			link := Shortlink(fmt.Sprintf("id-%d", i), fmt.Sprintf("code%d", i), base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, s.Insert(ctx, link))
		}

		got, err := s.List(ctx, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "code4", got[0].ShortCode)
		assert.Equal(t, "code3", got[1].ShortCode)
		assert.Equal(t, "code2", got[2].ShortCode)
	})

	t.Run("Status checks", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		for i := 0; i < 3; i++ {
			check := model.StatusCheck{
				ID:         fmt.Sprintf("status-%d", i),
				ClientName: fmt.Sprintf("client-%d", i),
				Timestamp:  base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, s.SaveStatus(ctx, check))
		}

		got, err := s.ListStatus(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "client-0", got[0].ClientName)
		assert.Equal(t, "client-1", got[1].ClientName)
		assert.True(t, base.Equal(got[0].Timestamp))
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
