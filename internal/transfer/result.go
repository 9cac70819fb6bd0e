package transfer

import "fmt"

// ResultKind tags which of the four transfer outcomes a Result holds.
type ResultKind int

const (
	// Skipped means the destination already matched the source (same size
	// and mtime) and no bytes were moved.
	Skipped ResultKind = iota
	// Resumed means an existing partial destination was extended from its
	// current length rather than restarted from zero.
	Resumed
	// Completed means the transfer ran start to finish with no existing
	// destination to resume from.
	Completed
	// Cancelled means the caller's CancellationToken fired mid-transfer.
	Cancelled
)

func (k ResultKind) String() string {
	switch k {
	case Skipped:
		return "Skipped"
	case Resumed:
		return "Resumed"
	case Completed:
		return "Completed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a Get or Put call. For Completed, Resumed and
// Cancelled, BytesTransferred is the destination's total size once the call
// returns: for Completed it is the whole file, for Resumed it includes the
// bytes that were already present before this call began, and for Cancelled
// it is however much had been flushed to the destination when the
// CancellationToken fired. For Skipped it is 0.
type Result struct {
	Kind             ResultKind
	BytesTransferred uint64
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%d bytes)", r.Kind, r.BytesTransferred)
}
