package transfer

// chunkResult is the outcome of one blocking chunk I/O call run on its own
// goroutine so it can be raced against cancellation.
type chunkResult struct {
	n   int
	err error
}

// raceChunk runs fn — a single blocking chunk read or write — racing it
// against cancel. The race is biased toward cancellation: IsCancelled is
// checked synchronously before anything blocks, so a signal that landed
// before this iteration began is never lost to a coincidentally-ready I/O
// result in the select below. If cancel is nil the call runs unraced.
//
// When cancellation wins, fn's goroutine is abandoned mid-call rather than
// interrupted: pkg/sftp has no cancellable Read/Write, so the caller closing
// the *sftp.File races the abandoned goroutine's use of it. That race ends
// the in-flight request without corrupting the destination already written,
// which is all the cooperative-cancel contract promises.
func raceChunk(cancel *CancellationToken, fn func() (int, error)) (n int, err error, cancelled bool) {
	if cancel != nil && cancel.IsCancelled() {
		return 0, nil, true
	}
	if cancel == nil {
		n, err = fn()
		return n, err, false
	}

	resultCh := make(chan chunkResult, 1)
	go func() {
		n, err := fn()
		resultCh <- chunkResult{n: n, err: err}
	}()

	select {
	case <-cancel.Done():
		return 0, nil, true
	case res := <-resultCh:
		return res.n, res.err, false
	}
}
