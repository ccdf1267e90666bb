// Package help holds the CLI quick reference and help topics.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/lox/pkg/interpreter"
	"github.com/thomasrohde/lox/pkg/stdlib"
)

// Version is the interpreter version shown by the CLI.
const Version = "v0.3.0"

// QUICKREF is printed by `lox help` with no topic.
var QUICKREF = `lox ` + Version + ` - a small scripting language with closures

USAGE
  lox [file]                 run a file, or start the REPL with no file
  lox run <file|->           run a program (- reads stdin)
  lox check <file>           lex, parse and resolve without running
  lox ast <file>             print the syntax tree
  lox fmt <file>             re-indent a program
  lox repl                   interactive session
  lox trace <file.jsonl>     summarise a trace written by run --trace
  lox config                 print the effective configuration
  lox help [topic]           this text, or one topic

EXIT CODES
  0 ok, 1 usage or IO error, 65 static error, 70 runtime error

TOPICS
  syntax, types, functions, scope, natives, config, diagnostics, examples
  Topic names may be abbreviated: lox help diag
`

// TopicList is the display order of topics.
var TopicList = []string{"syntax", "types", "functions", "scope", "natives", "config", "diagnostics", "examples"}

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `STATEMENTS
  print expr;                 write the display form of expr and a newline
  var name = expr;            declare (initializer optional, defaults to nil)
  { ... }                     block with its own scope
  if (cond) stmt else stmt    else binds to the nearest if
  while (cond) stmt
  for (init; cond; step) stmt any clause may be empty
  fun name(a, b) { ... }      at most 8 parameters
  return expr;                only inside a function

EXPRESSIONS (lowest to highest precedence)
  =  or  and  == !=  < <= > >=  + -  * /  ! - (unary)  call()  (group)

  // comments run to the end of the line
`,
	"types": `VALUES
  nil        the absence of a value
  true/false booleans
  1, 2.5     numbers are 64-bit floats; 1/0 is +Inf
  "text"     strings may span lines and have no escapes
  functions  user functions and natives, compared by identity

TRUTHINESS
  Only nil and false are falsy. 0 and "" are truthy.

OPERATORS
  + adds two numbers or concatenates two strings; anything else is an error.
  - * / < <= > >= require two numbers.
  == and != work on any pair and never convert types.
  and/or return the operand that decided the result.
`,
	"functions": `FUNCTIONS
  fun add(a, b) { return a + b; }
  print add(1, 2);      // 3

  Calling with the wrong number of arguments is a runtime error.
  A function without return yields nil.
  Functions are values: they can be stored, passed and returned.

CLOSURES
  fun makeCounter() {
    var i = 0;
    fun count() { i = i + 1; return i; }
    return count;
  }
  var c = makeCounter();
  print c();  // 1
  print c();  // 2
`,
	"scope": `SCOPE
  Variables are lexically scoped. Every block opens a scope; a function
  body shares one scope with its parameters.

  Redeclaring a name in the same scope is an error, and so is reading a
  local variable inside its own initializer. Shadowing an outer name is
  fine. Top-level code may not return.

  Names that are not found in any enclosing scope are looked up as
  globals when the code runs, so functions may call functions declared
  after them.
`,
	"natives": `NATIVE FUNCTIONS
  Natives live in the global scope and can be shadowed. Which ones are
  installed is controlled by natives.allow and natives.deny in the config.

` + NativesIndex(),
	"config": `CONFIGURATION
  Read from ./.loxrc.yaml, else ~/.lox/config.yaml, else defaults.
  Unknown keys are rejected.

  max_call_depth: 1024        nested calls before "Stack overflow."
  timeout: 0s                 wall-clock budget per run, 0 disables
  natives:
    allow: []                 empty allows every native
    deny: []                  deny wins over allow
  repl:
    prompt: "> "
    continue_prompt: ". "
    history_file: ~/.lox_history
  diagnostics:
    pretty: false             JSON diagnostics unless true or --pretty

  Command-line flags override the file.
`,
	"diagnostics": `DIAGNOSTIC CODES
  E_LEX             unexpected character, unterminated string
  E_PARSE           syntax error (only the first is reported)
  E_RESOLVE         redeclaration, self-referencing initializer, top-level return
  E_RUNTIME         error raised by a native function
  E_TYPE            operand of the wrong type
  E_UNDEFINED       undefined variable
  E_NOT_CALLABLE    calling something that is not a function
  E_ARITY           wrong number of arguments
  E_STACK_OVERFLOW  max_call_depth exceeded
  E_BUDGET          timeout exceeded or run canceled
  E_IO              output or file error
  E_CONFIG          invalid configuration file

  Diagnostics are JSON on stderr by default; --pretty renders them for humans.
`,
	"examples": `EXAMPLES
  // fibonacci
  fun fib(n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
  }
  for (var i = 0; i < 10; i = i + 1) print fib(i);

  // timing
  var start = clock();
  fib(20);
  print "took " + str(clock() - start) + "s";
`,
}

// MatchTopic resolves an exact or unambiguous prefix match.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (topics: %s)", query, strings.Join(TopicList, ", "))
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q matches %s", query, strings.Join(matches, ", "))
	}
}

// NativesIndex lists the default natives with their arity.
func NativesIndex() string {
	fns := stdlib.Defaults().All()
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %-8s %s\n", name, signature(fns[name]))
	}
	fmt.Fprintf(&b, "\nTotal: %d functions\n", len(names))
	return b.String()
}

func signature(fn *interpreter.NativeFn) string {
	params := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	n := fn.Arity()
	if n > len(params) {
		n = len(params)
	}
	return fn.Name() + "(" + strings.Join(params[:n], ", ") + ")"
}
