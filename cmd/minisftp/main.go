package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/crypto/ssh"

	"github.com/restic/minisftp/internal/debug"
	"github.com/restic/minisftp/internal/errors"
	"github.com/restic/minisftp/internal/session"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

var version = "0.1.0-dev"

// cmdRoot is the minisftp command: connect, then drive an interactive REPL.
var cmdRoot = &cobra.Command{
	Use:   "minisftp [user@]host[:port]",
	Short: "Interactive SSH/SFTP client",
	Long: `
minisftp connects to an SSH server, negotiates an SFTP subsystem over the
encrypted channel, and opens a shell-style REPL for browsing and
transferring files between this workstation and the remote host.
`,
	Args:              cobra.MaximumNArgs(1),
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := parseHostPort(args[0], &globalOptions); err != nil {
				return err
			}
		}
		if globalOptions.Host == "" {
			return errors.Fatal("no host specified; pass [user@]host[:port] or set $MINISFTP_HOST")
		}
		if globalOptions.Username == "" {
			globalOptions.Username = os.Getenv("USER")
		}

		pwd, err := resolvePassword(&globalOptions)
		if err != nil {
			return err
		}
		globalOptions.password = pwd

		return runSession(cmd.Context(), globalOptions)
	},
}

func init() {
	globalOptions.AddFlags(cmdRoot.Flags())
}

// runSession drives one connect-and-REPL lifecycle: it builds the
// session.Config, connects, prints the handshake outcome, and on success
// hands the resulting transfer.Engine to the REPL loop until the operator
// exits or the connection fails fatally.
func runSession(ctx context.Context, opts GlobalOptions) error {
	cfg := session.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		Username: opts.Username,
		Auth:     session.Password{Secret: opts.password},
	}
	if opts.Insecure {
		cfg.VerifyHostKey = func(string, ssh.PublicKey) bool { return true }
	}

	observer := newConsoleObserver(opts.stderr, opts.Quiet)
	orchestrator := session.New(observer)

	engine, err := orchestrator.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to %s@%s: %w", opts.Username, cfg.Addr(), err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			fmt.Fprintf(opts.stderr, "error closing session: %v\n", cerr)
		}
	}()

	return runREPL(ctx, engine, opts)
}

func main() {
	debug.Log("main %#v", os.Args)
	debug.Log("minisftp %s compiled with %v on %v/%v", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmdRoot.ExecuteContext(ctx)

	var exitCode int
	switch {
	case err == nil:
		exitCode = 0
	case errors.Is(err, context.Canceled):
		exitCode = 130
	case errors.IsFatal(err):
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	case err != nil:
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		exitCode = 1
	}

	os.Exit(exitCode)
}
