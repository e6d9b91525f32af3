package hangar

import (
	"github.com/foundryforge/hangar/internal/chunkpool"
	"github.com/foundryforge/hangar/internal/idpool"
)

// Config tunes the chunk pool and entity identifier pool behind a Manager
// (spec §6 "Environment / persisted state"). Unlike the teacher's mutable
// package-level config var, Config is passed into Factory.NewManager and
// never mutated afterward — a shared mutable global is unsound once more
// than one Manager exists in a process.
type Config struct {
	// Chunk pool tuning (spec §4.3).
	ChunksPerSlab   int
	MaxChunks       int
	PreWarmChunks   int
	PreferHugePages bool

	// Entity identifier pool tuning (spec §4.1).
	EntitiesPerSegment  uint32
	MaxEmptySegments    int
	SegmentReleaseRatio float64
	AutoReleaseSegments bool

	// Archetype cleanup tuning (spec §4.6).
	MinArchetypesToKeep   int
	MaxArchetypesToRemove int
	MinEmptyCleanupPasses int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunksPerSlab:   64,
		MaxChunks:       4096,
		PreWarmChunks:   0,
		PreferHugePages: false,

		EntitiesPerSegment:  65536,
		MaxEmptySegments:    2,
		SegmentReleaseRatio: 0.1,
		AutoReleaseSegments: true,

		MinArchetypesToKeep:   1,
		MaxArchetypesToRemove: 16,
		MinEmptyCleanupPasses: 2,
	}
}

func (c Config) chunkPoolConfig() chunkpool.Config {
	return chunkpool.Config{
		ChunksPerSlab:   c.ChunksPerSlab,
		MaxChunks:       c.MaxChunks,
		PreWarmCount:    c.PreWarmChunks,
		PreferHugePages: c.PreferHugePages,
	}
}

func (c Config) idPoolConfig() idpool.Config {
	return idpool.Config{
		EntitiesPerSegment: c.EntitiesPerSegment,
		MaxEmptySegments:   c.MaxEmptySegments,
		ReleaseThreshold:   c.SegmentReleaseRatio,
		AutoRelease:        c.AutoReleaseSegments,
	}
}
