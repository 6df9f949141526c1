package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	id1 := g.Generate()
	id2 := g.Generate()

	assert.Len(t, id1, 26)
	assert.NotEqual(t, id1, id2)
	assert.True(t, IsValid(id1))
	assert.True(t, IsValid(id2))
}

func TestGenerateNOrdered(t *testing.T) {
	g := NewGenerator()

	ids := g.GenerateN(100)
	require.Len(t, ids, 100)

	assert.True(t, sort.StringsAreSorted(ids), "ULIDs should be monotonically increasing")

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTime(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	id := New()
	after := time.Now()

	ts, err := Time(id)
	require.NoError(t, err)
	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(after))
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid("0123456789012345678901234!"))
	assert.True(t, IsValid(New()))
}

func TestGenerateConcurrent(t *testing.T) {
	g := NewGenerator()

	const workers = 8
	const perWorker = 50

	results := make(chan string, workers*perWorker)
	done := make(chan struct{})

	for i := 0; i < workers; i++ {
		go func() {
			for j := 0; j < perWorker; j++ {
				results <- g.Generate()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
