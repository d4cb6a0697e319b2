package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Pages(t *testing.T) {
	env, _, _ := newTestEnv(t, "foo", []string{"A", "B", "C"}, map[string]string{
		"A": "foo\nfoo\nfoo",
		"B": "foo",
		"C": "none",
	})
	s := NewSession(NewCursor(env), SessionOptions{})
	ctx := context.Background()

	page, done := s.Collect(ctx, 2)
	assert.Len(t, page, 2)
	assert.False(t, done)

	page, done = s.Collect(ctx, 2)
	assert.Len(t, page, 2)
	assert.False(t, done, "completion is only known once the cursor reports the end")

	page, done = s.Collect(ctx, 2)
	assert.Empty(t, page)
	assert.True(t, done)
	assert.Equal(t, 4, s.Found())

	progress, total := s.Progress()
	assert.Equal(t, 3, progress)
	assert.Equal(t, 3, total)
}

func TestSession_Limit(t *testing.T) {
	env, mat, _ := newTestEnv(t, "foo", []string{"A", "B"}, map[string]string{
		"A": "foo\nfoo\nfoo",
		"B": "foo",
	})
	s := NewSession(NewCursor(env), SessionOptions{Limit: 2})

	page, done := s.Collect(context.Background(), 0)
	assert.Len(t, page, 2)
	assert.True(t, done)
	assert.True(t, s.Done())
	assert.Equal(t, 0, mat.Calls("B"), "nothing past the limit is materialized")

	page, done = s.Collect(context.Background(), 0)
	assert.Empty(t, page)
	assert.True(t, done)
}

func TestSession_ProgressCallback(t *testing.T) {
	env, _, _ := newTestEnv(t, "foo", []string{"A", "B"}, map[string]string{"A": "foo", "B": "bar"})

	var seen []int
	s := NewSession(NewCursor(env), SessionOptions{
		OnProgress: func(progress, total int) {
			assert.Equal(t, 2, total)
			seen = append(seen, progress)
		},
	})

	_, done := s.Collect(context.Background(), 0)
	require.True(t, done)
	assert.Equal(t, []int{0, 2}, seen)
}

func TestSession_CancelledIsNotDone(t *testing.T) {
	env, _, _ := newTestEnv(t, "foo", []string{"A"}, map[string]string{"A": "foo"})
	s := NewSession(NewCursor(env), SessionOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page, done := s.Collect(ctx, 0)
	assert.Empty(t, page)
	assert.False(t, done)

	page, done = s.Collect(context.Background(), 0)
	assert.Len(t, page, 1)
	assert.True(t, done)
}
