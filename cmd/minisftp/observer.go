package main

import (
	"fmt"
	"io"

	"github.com/restic/minisftp/internal/lifecycle"
)

// newConsoleObserver prints one line per accepted lifecycle transition to
// w, the way a terminal REPL narrates a connection attempt. It is silent
// when quiet is set, except for the terminal Error transition, which always
// surfaces since it carries the only diagnostic the operator gets.
func newConsoleObserver(w io.Writer, quiet bool) lifecycle.Observer {
	return lifecycle.ObserverFunc(func(prev, next lifecycle.Snapshot) {
		if next.IsError() {
			fmt.Fprintf(w, "connection failed: %s\n", next.Err.Message)
			return
		}
		if quiet {
			return
		}
		fmt.Fprintf(w, "%s -> %s\n", prev.Current, next.Current)
	})
}
