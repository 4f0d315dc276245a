package memdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdate_CommitsOnSuccess(t *testing.T) {
	db := New()
	table := NewTable[string, int](db, nil)
	log := NewLog[string](db)

	err := db.Update(context.Background(), func(ctx context.Context) error {
		table.Put("a", 1)
		log.Append("a")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, db.View(context.Background(), func(ctx context.Context) error {
		v, ok := table.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
		var entries []string
		log.Scan(func(s string) bool { entries = append(entries, s); return true })
		require.Equal(t, []string{"a"}, entries)
		return nil
	}))
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	db := New()
	table := NewTable[string, int](db, nil)
	log := NewLog[string](db)
	require.NoError(t, db.Update(context.Background(), func(ctx context.Context) error {
		table.Put("a", 1)
		log.Append("opening")
		return nil
	}))

	boom := errors.New("boom")
	err := db.Update(context.Background(), func(ctx context.Context) error {
		table.Put("a", 5)
		table.Put("b", 2)
		table.Delete("a")
		log.Append("lost")
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, db.View(context.Background(), func(ctx context.Context) error {
		v, ok := table.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
		_, ok = table.Get("b")
		require.False(t, ok)
		count := 0
		log.Scan(func(string) bool { count++; return true })
		require.Equal(t, 1, count)
		return nil
	}))
}

func TestUpdate_NestedJoinsOuterTransaction(t *testing.T) {
	db := New()
	table := NewTable[string, int](db, nil)
	innerErr := errors.New("inner failed")

	err := db.Update(context.Background(), func(ctx context.Context) error {
		table.Put("outer", 1)
		require.NoError(t, db.Update(ctx, func(ctx context.Context) error {
			table.Put("first", 2)
			return nil
		}))
		return db.Update(ctx, func(ctx context.Context) error {
			table.Put("second", 3)
			return innerErr
		})
	})
	require.ErrorIs(t, err, innerErr)
	require.Equal(t, 0, table.Len())
}

func TestUpdate_NestedCommitsWithOuter(t *testing.T) {
	db := New()
	table := NewTable[string, int](db, nil)

	err := db.Update(context.Background(), func(ctx context.Context) error {
		return db.Update(ctx, func(ctx context.Context) error {
			table.Put("inner", 2)
			return nil
		})
	})
	require.NoError(t, err)
	v, ok := table.Get("inner")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestUpdate_InsideViewIsRejected(t *testing.T) {
	db := New()
	err := db.View(context.Background(), func(ctx context.Context) error {
		return db.Update(ctx, func(context.Context) error { return nil })
	})
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestUpdate_CancelledContextRollsBack(t *testing.T) {
	db := New()
	table := NewTable[string, int](db, nil)
	ctx, cancel := context.WithCancel(context.Background())

	err := db.Update(ctx, func(ctx context.Context) error {
		table.Put("a", 1)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, table.Len())
}

func TestTable_CloneIsolatesCallers(t *testing.T) {
	db := New()
	table := NewTable[string, []int](db, func(v []int) []int { return append([]int(nil), v...) })
	src := []int{1, 2}
	require.NoError(t, db.Update(context.Background(), func(ctx context.Context) error {
		table.Put("a", src)
		return nil
	}))
	src[0] = 99
	require.NoError(t, db.View(context.Background(), func(ctx context.Context) error {
		got, _ := table.Get("a")
		require.Equal(t, []int{1, 2}, got)
		got[1] = 42
		again, _ := table.Get("a")
		require.Equal(t, []int{1, 2}, again)
		return nil
	}))
}
