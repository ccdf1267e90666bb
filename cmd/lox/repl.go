package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/lox/pkg/help"
	"github.com/thomasrohde/lox/pkg/runtime"
)

func (c *cli) cmdRepl(args []string) int {
	pretty := false
	for _, arg := range args {
		if arg == "--pretty" {
			pretty = true
		}
	}

	cfg, code := c.loadConfig()
	if code != exitOK {
		return code
	}
	pretty = pretty || cfg.Diagnostics.Pretty

	fmt.Fprintf(c.stdout, "lox %s (:quit to exit, :help for help)\n", help.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath := cfg.HistoryPath(); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	rt := runtime.New(runtime.WithConfig(cfg), runtime.WithOutput(c.stdout))

	for {
		src, ok := readByParseProbe(ln, cfg.REPL.Prompt, cfg.REPL.ContinuePrompt)
		if !ok {
			fmt.Fprintln(c.stdout)
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if c.replCommand(trimmed) {
				return exitOK
			}
			continue
		}

		// Ctrl-C during evaluation cancels the current input only.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := rt.Eval(ctx, src)
		stop()
		if err != nil {
			c.report(err, pretty)
		}
	}
	return exitOK
}

// replCommand handles a :command and reports whether the session ends.
func (c *cli) replCommand(cmd string) bool {
	fields := strings.Fields(cmd)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		if len(fields) > 1 {
			_, content, err := help.MatchTopic(fields[1])
			if err != nil {
				fmt.Fprintln(c.stderr, err)
				return false
			}
			fmt.Fprint(c.stdout, content)
			return false
		}
		fmt.Fprint(c.stdout, help.QUICKREF)
	default:
		fmt.Fprintln(c.stderr, "unknown command. Type :quit to exit.")
	}
	return false
}

// readByParseProbe reads lines until they form a complete input, as
// decided by trying to parse what has been typed so far.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C discards the pending input.
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			// A blank continuation line submits what was typed, so the
			// error gets reported instead of prompting forever.
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !runtime.Incomplete(src) {
			return src, true
		}
	}
}
