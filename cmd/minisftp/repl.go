package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/restic/minisftp/internal/transfer"
)

// runREPL drives the shell-style command loop:
// ls/cd/lcd/pwd/lpwd/get/put/mkdir/rm/exit/quit against the given transfer
// engine. Command parsing here is deliberately minimal (whitespace
// splitting, no quoting) — the REPL's argument grammar is outside the
// core's concern.
func runREPL(ctx context.Context, engine *transfer.Engine, opts GlobalOptions) error {
	remoteCwd, err := engine.Canonicalize(".")
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}
	localCwd, err := os.Getwd()
	if err != nil {
		localCwd = "."
	}

	if !opts.Quiet {
		fmt.Fprintf(opts.stdout, "connected; remote home is %s\n", remoteCwd)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(opts.stdout, "minisftp:%s> ", remoteCwd)
		if !sc.Scan() {
			return nil
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "pwd":
			fmt.Fprintf(opts.stdout, "remote: %s\nlocal:  %s\n", remoteCwd, localCwd)
		case "lpwd":
			fmt.Fprintln(opts.stdout, localCwd)
		case "cd":
			if len(args) != 1 {
				fmt.Fprintln(opts.stderr, "usage: cd <path>")
				continue
			}
			target := resolveRemotePath(remoteCwd, args[0])
			resolved, err := engine.Canonicalize(target)
			if err != nil {
				fmt.Fprintf(opts.stderr, "cd: %v\n", err)
				continue
			}
			remoteCwd = resolved
		case "lcd":
			if len(args) != 1 {
				fmt.Fprintln(opts.stderr, "usage: lcd <path>")
				continue
			}
			dir := resolveLocalPath(localCwd, args[0])
			if _, err := os.Stat(dir); err != nil {
				fmt.Fprintf(opts.stderr, "lcd: %v\n", err)
				continue
			}
			localCwd = dir
		case "ls":
			target := remoteCwd
			if len(args) == 1 {
				target = resolveRemotePath(remoteCwd, args[0])
			}
			entries, err := engine.Ls(target)
			if err != nil {
				fmt.Fprintf(opts.stderr, "ls: %v\n", err)
				continue
			}
			for _, e := range entries {
				fmt.Fprintf(opts.stdout, "%s %12d %s\n", e.PermissionString(), e.Size, e.Name)
			}
		case "mkdir":
			if len(args) != 1 {
				fmt.Fprintln(opts.stderr, "usage: mkdir <path>")
				continue
			}
			if err := engine.Mkdir(resolveRemotePath(remoteCwd, args[0])); err != nil {
				fmt.Fprintf(opts.stderr, "mkdir: %v\n", err)
			}
		case "rm":
			if len(args) != 1 {
				fmt.Fprintln(opts.stderr, "usage: rm <path>")
				continue
			}
			if err := engine.Rm(resolveRemotePath(remoteCwd, args[0])); err != nil {
				fmt.Fprintf(opts.stderr, "rm: %v\n", err)
			}
		case "get":
			if len(args) < 1 || len(args) > 2 {
				fmt.Fprintln(opts.stderr, "usage: get <remote> [local]")
				continue
			}
			remote := resolveRemotePath(remoteCwd, args[0])
			localName := path.Base(args[0])
			if len(args) == 2 {
				localName = args[1]
			}
			local := resolveLocalPath(localCwd, localName)
			runTransfer(ctx, opts, fmt.Sprintf("get %s", args[0]), func(cancel *transfer.CancellationToken) (transfer.Result, error) {
				return engine.Get(remote, local, progressPrinter(opts, args[0]), cancel)
			})
		case "put":
			if len(args) < 1 || len(args) > 2 {
				fmt.Fprintln(opts.stderr, "usage: put <local> [remote]")
				continue
			}
			local := resolveLocalPath(localCwd, args[0])
			remoteName := filepath.Base(args[0])
			if len(args) == 2 {
				remoteName = args[1]
			}
			remote := resolveRemotePath(remoteCwd, remoteName)
			runTransfer(ctx, opts, fmt.Sprintf("put %s", args[0]), func(cancel *transfer.CancellationToken) (transfer.Result, error) {
				return engine.Put(local, remote, progressPrinter(opts, args[0]), cancel)
			})
		default:
			fmt.Fprintf(opts.stderr, "unknown command: %s\n", cmd)
		}
	}
}

// runTransfer races ctx against a single Get/Put call: a SIGINT cancels the
// transfer's CancellationToken, and the call still returns normally with a
// Cancelled result rather than being killed outright.
func runTransfer(ctx context.Context, opts GlobalOptions, label string, call func(*transfer.CancellationToken) (transfer.Result, error)) {
	cancel := transfer.NewCancellationToken()
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel.Cancel()
		case <-done:
		}
	}()

	result, err := call(cancel)
	close(done)

	if err != nil {
		fmt.Fprintf(opts.stderr, "%s: %v\n", label, err)
		return
	}
	fmt.Fprintf(opts.stdout, "%s: %s\n", label, result)
}

// progressPrinter renders a one-line, overwritten progress indicator using
// go-humanize for human-readable byte counts; it is the kind of TTY
// formatting the design explicitly leaves to the front-end.
func progressPrinter(opts GlobalOptions, label string) transfer.ProgressFunc {
	if opts.Quiet {
		return nil
	}
	return func(p transfer.ProgressInfo) {
		fmt.Fprintf(opts.stdout, "\r%s: %s/%s (%.0f%%, %s/s)",
			label,
			humanize.Bytes(p.Transferred),
			humanize.Bytes(p.Total),
			p.Percent(),
			humanize.Bytes(uint64(p.Speed())), //nolint:gosec // speed is never negative
		)
	}
}

func resolveRemotePath(cwd, p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(cwd, p)
}

func resolveLocalPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
