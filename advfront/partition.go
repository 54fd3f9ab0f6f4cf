package advfront

// A chunk is the half-open range [start, end) of a list of
// work items.
type chunk struct {
	start int
	end   int
}

// partition splits n items into at most k contiguous,
// non-empty chunks of ceil(n/k) items each (the last one
// may be shorter).
func partition(n, k int) []chunk {
	if n <= 0 || k <= 0 {
		return nil
	}
	size := (n + k - 1) / k
	chunks := make([]chunk, 0, k)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, chunk{start: start, end: end})
	}
	return chunks
}

// dispatchPartitioned sends the chunks of n items split k
// ways, and acknowledges the missing chunks with pad, so
// that exactly k results are produced in total.
//
// Chunk i is always sent with index i, so a stable list is
// always routed the same way.
func dispatchPartitioned(n, k int, send func(i int, c chunk) error, pad func()) error {
	chunks := partition(n, k)
	for i, c := range chunks {
		if err := send(i, c); err != nil {
			return err
		}
	}
	for i := len(chunks); i < k; i++ {
		pad()
	}
	return nil
}
