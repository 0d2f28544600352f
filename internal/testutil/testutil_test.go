package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermedcampos/event-management-system/internal/store"
)

func TestMemoryJournal_OrdersBySeq(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, store.Entry{Script: "a", Line: 2, Seq: 3}))
	require.NoError(t, j.Append(ctx, store.Entry{Script: "a", Line: 1, Seq: 1}))
	require.NoError(t, j.Append(ctx, store.Entry{Script: "b", Line: 1, Seq: 2}))

	entries := j.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{entries[0].Seq, entries[1].Seq, entries[2].Seq})

	byLine := j.ByLine("a")
	assert.Len(t, byLine, 2)
	assert.Len(t, byLine[1], 1)
}

func TestMemoryJournal_ConcurrentAppend(t *testing.T) {
	j := NewMemoryJournal()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(line int) {
			defer wg.Done()
			_ = j.Append(context.Background(), store.Entry{Script: "s", Line: line, Seq: int64(line)})
		}(i + 1)
	}
	wg.Wait()

	assert.Len(t, j.ByLine("s"), 20)
}

func TestMemoryJournal_FailAppends(t *testing.T) {
	j := NewMemoryJournal()
	j.FailAppends()

	err := j.Append(context.Background(), store.Entry{})
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	assert.Empty(t, j.Entries())
}

func TestFixedRunID(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedRunID("run-1").Generate())
	assert.Equal(t, "test-run-default", NewFixedRunID("").Generate())
}
