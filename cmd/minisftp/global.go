package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/restic/minisftp/internal/errors"
)

// GlobalOptions holds the flags shared by the whole minisftp command.
type GlobalOptions struct {
	Host         string
	Port         uint16
	Username     string
	PasswordFile string
	Insecure     bool
	Quiet        bool

	password string
	stdout   io.Writer
	stderr   io.Writer
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVarP(&opts.Host, "host", "H", "", "`host` to connect to (default: $MINISFTP_HOST)")
	f.Uint16VarP(&opts.Port, "port", "P", 22, "`port` the SSH server listens on")
	f.StringVarP(&opts.Username, "user", "u", "", "`username` to authenticate as (default: $MINISFTP_USER or $USER)")
	f.StringVarP(&opts.PasswordFile, "password-file", "p", "", "`file` to read the password from (default: $MINISFTP_PASSWORD_FILE)")
	f.BoolVar(&opts.Insecure, "insecure", false, "accept any server host key without verification")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress the connection banner")

	if h := os.Getenv("MINISFTP_HOST"); h != "" {
		opts.Host = h
	}
	if u := os.Getenv("MINISFTP_USER"); u != "" {
		opts.Username = u
	}
	if pf := os.Getenv("MINISFTP_PASSWORD_FILE"); pf != "" {
		opts.PasswordFile = pf
	}
}

var globalOptions = GlobalOptions{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

// resolvePassword determines the password to authenticate with: a password
// file takes precedence, then $MINISFTP_PASSWORD, then an interactive
// terminal prompt. It never echoes the password it reads back to the
// caller via logs or errors.
func resolvePassword(opts *GlobalOptions) (string, error) {
	if opts.PasswordFile != "" {
		data, err := os.ReadFile(opts.PasswordFile)
		if err != nil {
			return "", errors.Fatalf("reading password file: %v", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if pwd := os.Getenv("MINISFTP_PASSWORD"); pwd != "" {
		return pwd, nil
	}

	return promptPassword(fmt.Sprintf("password for %s@%s: ", opts.Username, opts.Host))
}

// promptPassword reads a password from the controlling terminal without
// echoing it, falling back to a plain newline-terminated read from stdin
// when stdin isn't a terminal (e.g. piped input in a test harness).
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		if err != nil {
			return "", errors.Wrap(err, "reading password")
		}
		return string(data), nil
	}

	sc := bufio.NewScanner(os.Stdin)
	sc.Scan()
	return sc.Text(), errors.WithStack(sc.Err())
}

func parseHostPort(arg string, opts *GlobalOptions) error {
	if arg == "" {
		return nil
	}
	target := arg
	if at := strings.LastIndex(target, "@"); at >= 0 {
		opts.Username = target[:at]
		target = target[at+1:]
	}
	if idx := strings.LastIndex(target, ":"); idx >= 0 {
		port, err := strconv.ParseUint(target[idx+1:], 10, 16)
		if err != nil {
			return errors.Fatalf("invalid port in %q: %v", arg, err)
		}
		opts.Port = uint16(port) //nolint:gosec // ParseUint bitSize=16 bounds the value
		target = target[:idx]
	}
	opts.Host = target
	return nil
}
