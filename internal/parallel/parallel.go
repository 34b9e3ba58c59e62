// Package parallel splits work over goroutines.
//
// Graph stores are single-goroutine objects, so parallel evaluation gives each
// goroutine its own store. Every chunk re-records the function privately and
// evaluates its share of the points.
package parallel

import "runtime"

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`               // Whether parallel execution is enabled.
	NumWorkers   int  `json:"num_workers" yaml:"num_workers"`       // Number of worker goroutines to use.
	MinChunkSize int  `json:"min_chunk_size" yaml:"min_chunk_size"` // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16, // Re-recording per chunk has to pay for itself.
	}
}

// chunkSize returns how many items each goroutine handles, or n for sequential execution.
func (c Config) chunkSize(n int) int {
	if !c.Enabled || c.NumWorkers <= 1 || n < c.MinChunkSize {
		return n
	}
	return max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize, 1)
}

// Chunks splits [0, n) into the ranges that would run on separate goroutines.
func Chunks(n int, cfg Config) [][2]int {
	if n <= 0 {
		return nil
	}
	size := cfg.chunkSize(n)
	var out [][2]int
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}
