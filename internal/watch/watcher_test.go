package watch

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/classgrep/internal/workspace"
	"github.com/standardbeagle/classgrep/testhelpers"
)

const batchTimeout = 5 * time.Second

func startWatcher(t *testing.T) (*testhelpers.TestProject, *workspace.Workspace, <-chan Batch) {
	t.Helper()
	p := testhelpers.NewTestProject(t)
	p.AddJavaClass("com.acme", "Server", "    void start() { log(\"start\"); }\n")
	p.AddJavaClass("com.acme", "Util", "    static int twice(int x) { return 2 * x; }\n")

	cfg := testhelpers.NewTestConfigBuilder(p.Root()).Build()
	ws, err := workspace.Open(context.Background(), cfg)
	require.NoError(t, err)

	w, err := New(ws, cfg.Corpus.Exclude, 20*time.Millisecond)
	require.NoError(t, err)

	batches := make(chan Batch, 16)
	w.OnBatch(func(b Batch) { batches <- b })
	require.NoError(t, w.Start())

	t.Cleanup(func() {
		assert.NoError(t, w.Stop())
		ws.Close()
	})
	return p, ws, batches
}

func waitBatch(t *testing.T, batches <-chan Batch, want func(Batch) bool) Batch {
	t.Helper()
	deadline := time.After(batchTimeout)
	for {
		select {
		case b := <-batches:
			if want(b) {
				return b
			}
		case <-deadline:
			t.Fatal("timed out waiting for watcher batch")
			return Batch{}
		}
	}
}

func warm(t *testing.T, ws *workspace.Workspace) {
	t.Helper()
	s, err := ws.Search(workspace.Request{Pattern: "x"})
	require.NoError(t, err)
	s.Collect(context.Background(), 0)
}

func TestWatcher_WriteInvalidatesUnits(t *testing.T) {
	p, ws, batches := startWatcher(t)
	warm(t, ws)
	_, cached := ws.CachedText("src/com/acme/Util.java")
	require.True(t, cached)

	p.AddJavaClass("com.acme", "Util", "    static int thrice(int x) { return 3 * x; }\n")

	b := waitBatch(t, batches, func(b Batch) bool { return len(b.Invalidated) > 0 })
	assert.Contains(t, b.Invalidated, "com.acme.Util")
	assert.NotContains(t, b.Invalidated, "com.acme.Server")

	_, cached = ws.CachedText("src/com/acme/Util.java")
	assert.False(t, cached)

	s, err := ws.Search(workspace.Request{Pattern: "thrice"})
	require.NoError(t, err)
	matches, _ := s.Collect(context.Background(), 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "com.acme.Util.thrice", matches[0].Enclosing.FullName)
}

func TestWatcher_UnchangedWriteKeepsCache(t *testing.T) {
	p, ws, batches := startWatcher(t)
	warm(t, ws)

	p.AddFile("src/com/acme/Util.java", p.Content("src/com/acme/Util.java"))

	b := waitBatch(t, batches, func(b Batch) bool { return len(b.Paths) > 0 })
	if !b.Rescanned {
		assert.Equal(t, []string{"src/com/acme/Util.java"}, b.Unchanged)
		assert.Empty(t, b.Invalidated)
		_, cached := ws.CachedText("src/com/acme/Util.java")
		assert.True(t, cached)
	}
}

func TestWatcher_CreateAndRemoveRescan(t *testing.T) {
	p, ws, batches := startWatcher(t)

	p.AddJavaClass("com.acme.net", "Client", "    void connect() {}\n")
	waitBatch(t, batches, func(b Batch) bool { return b.Rescanned })
	require.Eventually(t, func() bool {
		return slices.Contains(ws.Corpus().Names(), "com.acme.net.Client")
	}, batchTimeout, 10*time.Millisecond)

	p.Remove("src/com/acme/Util.java")
	waitBatch(t, batches, func(b Batch) bool { return b.Rescanned })
	require.Eventually(t, func() bool {
		return !slices.Contains(ws.Corpus().Names(), "com.acme.Util")
	}, batchTimeout, 10*time.Millisecond)
}

func TestWatcher_IgnoresUnsupportedFiles(t *testing.T) {
	p, _, batches := startWatcher(t)

	p.AddFile("notes.txt", "hello")
	p.AddFile("target/Gen.java", "class Gen {}")
	p.AddJavaClass("com.acme", "Marker", "")

	b := waitBatch(t, batches, func(b Batch) bool { return slices.Contains(b.Paths, "src/com/acme/Marker.java") })
	assert.NotContains(t, b.Paths, "notes.txt")
	assert.NotContains(t, b.Paths, "target/Gen.java")
}

func TestDebouncer_MergesEvents(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]bool
	d := newDebouncer(20*time.Millisecond, func(_ context.Context, events map[string]bool) {
		mu.Lock()
		got = append(got, events)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go d.run(ctx, &wg)

	d.add("a.java", true)
	d.add("a.java", false)
	d.add("b.java", false)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, batchTimeout, 5*time.Millisecond)

	cancel()
	wg.Wait()

	assert.Equal(t, map[string]bool{"a.java": true, "b.java": false}, got[0])
}
