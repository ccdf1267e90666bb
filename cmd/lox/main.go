// Command lox is the interpreter's CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/help"
	"github.com/thomasrohde/lox/pkg/interpreter"
	"github.com/thomasrohde/lox/pkg/runtime"
)

// Exit codes follow sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 1
	exitStatic  = 65
	exitRuntime = 70
)

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// dir is where the project config file is looked up.
	dir string
}

func main() {
	cwd, _ := os.Getwd()
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, dir: cwd}
	os.Exit(c.run(os.Args[1:]))
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		return c.cmdRepl(nil)
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return c.cmdRun(args[1:])
	case "check":
		return c.cmdCheck(args[1:])
	case "ast":
		return c.cmdAST(args[1:])
	case "fmt":
		return c.cmdFmt(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "trace":
		return c.cmdTrace(args[1:])
	case "config":
		return c.cmdConfig(args[1:])
	case "help", "--help", "-h":
		return c.cmdHelp(args[1:])
	case "version", "--version":
		fmt.Fprintln(c.stdout, "lox", help.Version)
		return exitOK
	default:
		if strings.HasPrefix(cmd, "-") && cmd != "-" {
			fmt.Fprintf(c.stderr, "Unknown command: %s\n", cmd)
			fmt.Fprintln(c.stderr, "usage: lox <command> [options]")
			fmt.Fprintln(c.stderr, "commands: run, check, ast, fmt, repl, trace, config, help")
			return exitUsage
		}
		// lox <file> is shorthand for lox run <file>.
		return c.cmdRun(args)
	}
}

// runFlags are shared by run and check.
type runFlags struct {
	file         string
	pretty       bool
	tracePath    string
	maxCallDepth int
	timeout      time.Duration
}

func (c *cli) parseRunFlags(args []string, usage string) (*runFlags, bool) {
	f := &runFlags{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--pretty":
			f.pretty = true
		case "--trace", "--max-call-depth", "--timeout":
			if i+1 >= len(args) {
				fmt.Fprintf(c.stderr, "%s requires a value\n", arg)
				return nil, false
			}
			i++
			if !f.setValue(arg, args[i]) {
				fmt.Fprintf(c.stderr, "invalid value for %s: %s\n", arg, args[i])
				return nil, false
			}
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				f.file = arg
				continue
			}
			fmt.Fprintf(c.stderr, "unknown flag: %s\n", arg)
			return nil, false
		}
	}
	if f.file == "" {
		fmt.Fprintln(c.stderr, usage)
		return nil, false
	}
	return f, true
}

func (f *runFlags) setValue(flag, value string) bool {
	switch flag {
	case "--trace":
		f.tracePath = value
	case "--max-call-depth":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return false
		}
		f.maxCallDepth = n
	case "--timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return false
		}
		f.timeout = d
	}
	return true
}

func (c *cli) cmdRun(args []string) int {
	flags, ok := c.parseRunFlags(args, "usage: lox run <file|-> [--pretty] [--trace <path>] [--max-call-depth N] [--timeout D]")
	if !ok {
		return exitUsage
	}

	cfg, code := c.loadConfig()
	if code != exitOK {
		return code
	}
	pretty := flags.pretty || cfg.Diagnostics.Pretty

	source, filename, code := c.readSource(flags.file, pretty)
	if code != exitOK {
		return code
	}

	opts := []runtime.Option{
		runtime.WithConfig(cfg),
		runtime.WithOutput(c.stdout),
		runtime.WithMaxCallDepth(flags.maxCallDepth),
		runtime.WithTimeout(flags.timeout),
	}
	if flags.tracePath != "" {
		tw, err := newTraceWriter(flags.tracePath)
		if err != nil {
			c.reportIO(fmt.Sprintf("cannot write trace: %s", flags.tracePath), pretty)
			return exitUsage
		}
		defer tw.Close()
		opts = append(opts, runtime.WithTrace(tw.Write), runtime.WithRunID(newRunID()))
	}

	rt := runtime.New(opts...)
	return c.report(rt.Run(context.Background(), source, filename), pretty)
}

func (c *cli) cmdCheck(args []string) int {
	flags, ok := c.parseRunFlags(args, "usage: lox check <file|-> [--pretty]")
	if !ok {
		return exitUsage
	}
	cfg, code := c.loadConfig()
	if code != exitOK {
		return code
	}
	pretty := flags.pretty || cfg.Diagnostics.Pretty

	source, filename, code := c.readSource(flags.file, pretty)
	if code != exitOK {
		return code
	}

	diags := runtime.New(runtime.WithConfig(cfg)).Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return exitStatic
	}

	if pretty {
		fmt.Fprintln(c.stdout, "No errors found.")
	} else {
		fmt.Fprintln(c.stdout, "[]")
	}
	return exitOK
}

func (c *cli) cmdAST(args []string) int {
	file := firstPositional(args)
	if file == "" {
		fmt.Fprintln(c.stderr, "usage: lox ast <file|->")
		return exitUsage
	}
	source, filename, code := c.readSource(file, false)
	if code != exitOK {
		return code
	}
	out, err := runtime.New().Dump(source, filename)
	if err != nil {
		return c.report(err, false)
	}
	fmt.Fprintln(c.stdout, out)
	return exitOK
}

func (c *cli) cmdFmt(args []string) int {
	var file string
	write := false
	for _, arg := range args {
		switch {
		case arg == "--write":
			write = true
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			file = arg
		}
	}
	if file == "" || (write && file == "-") {
		fmt.Fprintln(c.stderr, "usage: lox fmt <file|-> [--write]")
		return exitUsage
	}

	source, filename, code := c.readSource(file, false)
	if code != exitOK {
		return code
	}
	formatted, err := runtime.New().Format(source, filename)
	if err != nil {
		return c.report(err, false)
	}

	if strings.Contains(source, "//") {
		fmt.Fprintln(c.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			c.reportIO(fmt.Sprintf("cannot write file: %s", file), false)
			return exitUsage
		}
		return exitOK
	}
	fmt.Fprint(c.stdout, formatted)
	return exitOK
}

func (c *cli) cmdConfig(_ []string) int {
	cfg, code := c.loadConfig()
	if code != exitOK {
		return code
	}
	out, err := cfg.YAML()
	if err != nil {
		fmt.Fprintf(c.stderr, "error rendering config: %s\n", err)
		return exitUsage
	}
	if cfg.Source != "" {
		fmt.Fprintf(c.stdout, "# %s\n", cfg.Source)
	} else {
		fmt.Fprintln(c.stdout, "# defaults")
	}
	c.stdout.Write(out)
	return exitOK
}

func (c *cli) cmdHelp(args []string) int {
	topic := firstPositional(args)
	if topic == "" {
		fmt.Fprint(c.stdout, help.QUICKREF)
		return exitOK
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitUsage
	}
	fmt.Fprint(c.stdout, content)
	return exitOK
}

// report prints err and maps it to an exit code.
func (c *cli) report(err error, pretty bool) int {
	if err == nil {
		return exitOK
	}
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(derr.Diagnostics, pretty))
		return exitStatic
	}
	var rerr *interpreter.RuntimeError
	if errors.As(err, &rerr) {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{rerr.Diag()}, pretty))
		return exitRuntime
	}
	fmt.Fprintln(c.stderr, err.Error())
	return exitRuntime
}

func (c *cli) reportIO(msg string, pretty bool) {
	diag := diagnostics.MakeDiag(diagnostics.EIO, msg, nil, "")
	fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
}

func (c *cli) loadConfig() (*config.Config, int) {
	cfg, err := config.Load(c.dir)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "fix or remove the config file; `lox help config` lists the keys")
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, true))
		return nil, exitUsage
	}
	return cfg, exitOK
}

func (c *cli) readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			fmt.Fprintf(c.stderr, "error reading stdin: %s\n", err)
			return "", "", exitUsage
		}
		return string(data), "<stdin>", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		c.reportIO(fmt.Sprintf("cannot read file: %s", file), pretty)
		return "", "", exitUsage
	}
	return string(source), file, exitOK
}

func firstPositional(args []string) string {
	for _, arg := range args {
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}
