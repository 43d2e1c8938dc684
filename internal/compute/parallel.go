package compute

import "sync"

// parallelFor splits [0, n) into one contiguous chunk per worker and waits
// for all of them.
func parallelFor(workers, n, minChunk int, fn func(worker, start, end int)) {
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(w, start, end)
	}

	wg.Wait()
}

// parallelStrided hands worker w the lanes w, w+workers, w+2*workers, ...
// which balances triangular workloads like the pairwise scan.
func parallelStrided(workers, n int, fn func(worker, stride int)) {
	if workers <= 1 || n <= 1 {
		fn(0, 1)
		return
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			fn(w, workers)
		}(w)
	}
	wg.Wait()
}
