package statestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

func initialState() map[string]any {
	return map[string]any{
		"data": map[string]any{
			"raw":      []record.Record{},
			"filtered": []record.Record{},
		},
		"ui": map[string]any{
			"currentPage":  1,
			"itemsPerPage": 10,
		},
	}
}

func TestGetUnsetPathReturnsNil(t *testing.T) {
	s := New(initialState())
	assert.Nil(t, s.Get("does.not.exist"))
	assert.Nil(t, s.Get(""))
	assert.False(t, s.Has("does.not.exist"))
}

func TestSetAndGet(t *testing.T) {
	s := New(initialState())

	s.Set("ui.currentPage", 3)
	assert.Equal(t, 3, s.Get("ui.currentPage"))

	// Intermediate levels are created as needed.
	s.Set("filters.status", "pending")
	assert.Equal(t, "pending", s.Get("filters.status"))
	assert.Equal(t, map[string]any{"status": "pending"}, s.Get("filters"))
}

func TestSetDoesNotReshapeSiblings(t *testing.T) {
	s := New(initialState())
	before := s.Get("ui")

	s.Set("data.raw", []record.Record{{record.FieldStatus: record.String("pending")}})

	assert.Equal(t, before, s.Get("ui"), "writing one path must not reshape unrelated branches")
}

func TestUpdateShallowMerge(t *testing.T) {
	s := New(initialState())

	s.Update("ui", map[string]any{"theme": "dark"})
	assert.Equal(t, "dark", s.Get("ui.theme"))
	assert.Equal(t, 1, s.Get("ui.currentPage"), "merge must keep existing keys")

	// Non-mapping current value degrades to Set.
	s.Set("scalar", 42)
	s.Update("scalar", map[string]any{"a": 1})
	assert.Equal(t, map[string]any{"a": 1}, s.Get("scalar"))
}

func TestNotificationOrder(t *testing.T) {
	s := New(initialState())

	type call struct {
		path     string
		newValue any
		oldValue any
	}
	var calls []call
	register := func(path string) {
		s.Subscribe(path, func(newValue, oldValue any, p string) {
			calls = append(calls, call{path: p, newValue: newValue, oldValue: oldValue})
		})
	}
	// Registration order deliberately scrambled; dispatch order must not
	// depend on it.
	register(Wildcard)
	register("a")
	register("a.b.c")
	register("a.b")

	s.Set("a.b.c", "first")
	calls = nil
	s.Set("a.b.c", "second")

	require.Len(t, calls, 4)
	assert.Equal(t, "a.b.c", calls[0].path)
	assert.Equal(t, "second", calls[0].newValue)
	assert.Equal(t, "first", calls[0].oldValue)

	assert.Equal(t, "a.b", calls[1].path)
	assert.Nil(t, calls[1].oldValue, "ancestor notifications carry no old value")
	assert.Equal(t, map[string]any{"c": "second"}, calls[1].newValue)

	assert.Equal(t, "a", calls[2].path)
	assert.Nil(t, calls[2].oldValue)

	assert.Equal(t, Wildcard, calls[3].path)
	whole, ok := calls[3].newValue.(map[string]any)
	require.True(t, ok, "wildcard receives the whole state")
	assert.Contains(t, whole, "ui")
}

func TestSubscriberCalledExactlyOncePerSet(t *testing.T) {
	s := New(nil)
	count := 0
	s.Subscribe("x", func(_, _ any, _ string) { count++ })

	s.Set("x", 1)
	assert.Equal(t, 1, count)
}

func TestUnsubscribe(t *testing.T) {
	s := New(nil)
	count := 0
	unsubscribe := s.Subscribe("x", func(_, _ any, _ string) { count++ })

	s.Set("x", 1)
	unsubscribe()
	unsubscribe() // idempotent
	s.Set("x", 2)

	assert.Equal(t, 1, count)
}

func TestSilentWriteSkipsNotification(t *testing.T) {
	s := New(nil)
	count := 0
	s.Subscribe("x", func(_, _ any, _ string) { count++ })

	s.Set("x", 1, Silent())
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, s.Get("x"))

	// History still records silent writes.
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "x", history[0].Path)
}

func TestPanickingSubscriberIsIsolated(t *testing.T) {
	s := New(nil)
	var reached []string

	s.Subscribe("x", func(_, _ any, _ string) {
		reached = append(reached, "bad")
		panic("subscriber bug")
	})
	s.Subscribe(Wildcard, func(_, _ any, _ string) {
		reached = append(reached, "wildcard")
	})

	assert.NotPanics(t, func() { s.Set("x", 1) })
	assert.Equal(t, []string{"bad", "wildcard"}, reached)
}

func TestHistoryRingBuffer(t *testing.T) {
	s := New(nil, WithHistoryCap(3))

	for i := 0; i < 5; i++ {
		s.Set("x", i)
	}

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, 2, history[0].NewValue)
	assert.Equal(t, 4, history[2].NewValue)
	assert.Equal(t, 1, history[1].OldValue)
}

func TestReadsAreSnapshots(t *testing.T) {
	s := New(initialState())
	s.Set("data.raw", []record.Record{{record.FieldStatus: record.String("pending")}})

	got := s.Get("data.raw").([]record.Record)
	got[0][record.FieldStatus] = record.String("tampered")

	fresh := s.Get("data.raw").([]record.Record)
	assert.Equal(t, "pending", fresh[0].Text(record.FieldStatus),
		"mutating a read value must not reach the store")
}

func TestSeedIsCopied(t *testing.T) {
	seed := map[string]any{"ui": map[string]any{"theme": "light"}}
	s := New(seed)

	seed["ui"].(map[string]any)["theme"] = "mutated"
	assert.Equal(t, "light", s.Get("ui.theme"))
}

func TestResetWholeTree(t *testing.T) {
	s := New(initialState())
	s.Set("ui.currentPage", 9)

	var wildcardCalls, exactCalls int
	s.Subscribe(Wildcard, func(_, _ any, _ string) { wildcardCalls++ })
	s.Subscribe("ui.currentPage", func(_, _ any, _ string) { exactCalls++ })

	s.Reset()

	assert.Equal(t, 1, s.Get("ui.currentPage"))
	assert.Equal(t, 1, wildcardCalls)
	assert.Equal(t, 0, exactCalls, "full reset notifies wildcard subscribers only")
}

func TestResetSinglePath(t *testing.T) {
	s := New(initialState())
	s.Set("ui.currentPage", 9)

	s.Reset("ui.currentPage")
	assert.Equal(t, 1, s.Get("ui.currentPage"))
}

func TestInvalidWritePathPanics(t *testing.T) {
	s := New(nil)
	assert.Panics(t, func() { s.Set("", 1) })
	assert.Panics(t, func() { s.Set(Wildcard, 1) })
}

func TestRecomputeSummary(t *testing.T) {
	s := New(initialState())
	s.Set("data.filtered", []record.Record{
		{
			record.FieldQuantity:   record.Number(2),
			record.FieldTotalValue: record.Number(20),
		},
		{
			record.FieldQuantity:   record.Number(1),
			record.FieldTotalValue: record.Number(50),
		},
		{
			// No numeric fields: counted, contributes nothing to sums.
			record.FieldStatus: record.String("pending"),
		},
	})

	var notified bool
	s.Subscribe("data.summary", func(_, _ any, _ string) { notified = true })

	s.RecomputeSummary("data.filtered", "data.summary")

	summary, ok := s.Get("data.summary").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, summary[SummaryCount])
	assert.Equal(t, 3.0, summary[SummaryTotalQuantity])
	assert.Equal(t, 70.0, summary[SummaryTotalValue])
	assert.InDelta(t, 70.0/3.0, summary[SummaryAverageValue].(float64), 0.0001)
	assert.True(t, notified)
}

func TestRecomputeSummaryEmpty(t *testing.T) {
	s := New(initialState())
	s.RecomputeSummary("data.filtered", "data.summary")

	summary := s.Get("data.summary").(map[string]any)
	assert.Equal(t, 0, summary[SummaryCount])
	assert.Equal(t, 0.0, summary[SummaryAverageValue])
}
