// Package diagnostics defines diagnostic types for lex, parse, resolve and
// runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/lox/pkg/token"
)

// Diagnostic code constants.
const (
	ELex           = "E_LEX"
	EParse         = "E_PARSE"
	EResolve       = "E_RESOLVE"
	ERuntime       = "E_RUNTIME"
	EType          = "E_TYPE"
	EUndefined     = "E_UNDEFINED"
	ENotCallable   = "E_NOT_CALLABLE"
	EArity         = "E_ARITY"
	EStackOverflow = "E_STACK_OVERFLOW"
	EBudget        = "E_BUDGET"
	EIO            = "E_IO"
	EConfig        = "E_CONFIG"
)

// Diagnostic represents a lex, parse, resolve, or runtime diagnostic.
type Diagnostic struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Pos     *token.Pos `json:"pos,omitempty"`
	Where   string     `json:"where,omitempty"`
	Hint    string     `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, pos *token.Pos, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Pos:     pos,
		Hint:    hint,
	}
}

// AtToken creates a Diagnostic located at tok. Where names the offending
// lexeme ("at 'x'" or "at end").
func AtToken(code, message string, tok token.Token) Diagnostic {
	pos := tok.Pos
	where := "at end"
	if tok.Type != token.EOF {
		where = fmt.Sprintf("at '%s'", tok.Lexeme)
	}
	return Diagnostic{
		Code:    code,
		Message: message,
		Pos:     &pos,
		Where:   where,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Pos != nil {
		loc = d.Pos.String()
	}
	msg := d.Message
	if d.Where != "" {
		msg = fmt.Sprintf("%s (%s)", d.Message, d.Where)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, msg, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// Diagnoser is implemented by every error type the pipeline produces.
type Diagnoser interface {
	error
	Diag() Diagnostic
}
