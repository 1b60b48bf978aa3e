package parallel

import (
	"runtime"
	"sync"
)

// Chunks splits [0, items) into at most workers contiguous ranges of
// near-equal size. The ranges are returned in ascending order.
func Chunks(items, workers int) [][2]int {
	if items <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	chunks := make([][2]int, 0, workers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}

// Parallelize divides items across the available CPU cores and executes fn
// concurrently for each range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	chunks := Chunks(items, runtime.NumCPU())

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items <= threshold, and in parallel otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// Reduce is a deterministic map-reduce over [0, items). Each chunk gets its
// own zeroed accumulator of length dim; fn adds the contribution of rows
// [start, end) into it. Partial accumulators are summed in chunk order, so
// for a fixed machine the result does not depend on goroutine scheduling.
// At or below threshold items the whole range is a single chunk.
func Reduce(items, threshold, dim int, fn func(start, end int, acc []float64)) []float64 {
	total := make([]float64, dim)
	if items <= 0 {
		return total
	}
	if items <= threshold {
		fn(0, items, total)
		return total
	}

	chunks := Chunks(items, runtime.NumCPU())
	partials := make([][]float64, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		partials[i] = make([]float64, dim)
		wg.Add(1)
		go func(acc []float64, s, e int) {
			defer wg.Done()
			fn(s, e, acc)
		}(partials[i], c[0], c[1])
	}
	wg.Wait()

	for _, p := range partials {
		for j, v := range p {
			total[j] += v
		}
	}
	return total
}
