package chunkpool

import "testing"

func TestAcquireReturnsChunkSizeBlock(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Acquire()
	if len(c) != ChunkSize {
		t.Fatalf("len(chunk) = %d, want %d", len(c), ChunkSize)
	}
}

func TestAcquireIsZeroed(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Acquire()
	for i := range c {
		c[i] = 0xFF
	}
	p.Release(c)
	c2 := p.Acquire()
	for i, b := range c2 {
		if b != 0 {
			t.Fatalf("byte %d not zeroed on reacquire: %#x", i, b)
		}
	}
}

func TestReleaseAndReacquireReusesSlab(t *testing.T) {
	cfg := Config{ChunksPerSlab: 4, MaxChunks: 4}
	p := New(cfg)
	var acquired [][]byte
	for i := 0; i < 4; i++ {
		c := p.Acquire()
		if c == nil {
			t.Fatalf("Acquire %d returned nil within MaxChunks", i)
		}
		acquired = append(acquired, c)
	}
	if p.Acquire() != nil {
		t.Fatalf("Acquire should fail once MaxChunks is exhausted")
	}
	p.Release(acquired[0])
	if p.Acquire() == nil {
		t.Fatalf("Acquire should succeed again after a Release")
	}
}

func TestOwnsChunkTracksSlabMembership(t *testing.T) {
	p := New(Config{ChunksPerSlab: 2, MaxChunks: 2})
	c := p.Acquire()
	if !p.OwnsChunk(c) {
		t.Fatalf("pool should own a chunk it just acquired")
	}

	other := New(Config{ChunksPerSlab: 2, MaxChunks: 2})
	foreign := other.Acquire()
	if p.OwnsChunk(foreign) {
		t.Fatalf("pool should not claim ownership of another pool's chunk")
	}
}

func TestGetStatsTracksAcquireRelease(t *testing.T) {
	p := New(Config{ChunksPerSlab: 2, MaxChunks: 2})
	c1 := p.Acquire()
	c2 := p.Acquire()
	p.Release(c1)

	stats := p.GetStats()
	if stats.TotalChunks != 2 {
		t.Fatalf("TotalChunks = %d, want 2", stats.TotalChunks)
	}
	if stats.FreeChunks != 1 {
		t.Fatalf("FreeChunks = %d, want 1", stats.FreeChunks)
	}
	if stats.AcquireCount != 2 {
		t.Fatalf("AcquireCount = %d, want 2", stats.AcquireCount)
	}
	if stats.ReleaseCount != 1 {
		t.Fatalf("ReleaseCount = %d, want 1", stats.ReleaseCount)
	}
	_ = c2
}

func TestPreWarmAllocatesUpfront(t *testing.T) {
	p := New(Config{ChunksPerSlab: 8, MaxChunks: 64, PreWarmCount: 10})
	stats := p.GetStats()
	if stats.TotalChunks < 10 {
		t.Fatalf("TotalChunks = %d, want at least 10 after pre-warming", stats.TotalChunks)
	}
}

func TestAcquireBatch(t *testing.T) {
	p := New(Config{ChunksPerSlab: 16, MaxChunks: 16})
	batch := p.AcquireBatch(5)
	if len(batch) != 5 {
		t.Fatalf("AcquireBatch(5) returned %d chunks", len(batch))
	}
}
