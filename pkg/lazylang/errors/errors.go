// Package errors provides the structured error type shared by every stage
// of the lazylang pipeline: lexer, parser, evaluator, and formatter.
//
// A SourceError carries enough structure for three very different
// consumers: a human-readable terminal reporter, a JSON payload for
// machine consumers, and (for the evaluator) the mutable error-context
// scratchpad that tracks the most recent failure location across an
// evaluation.
package errors

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of error kinds a lazylang evaluation can produce.
type Kind string

const (
	UnexpectedCharacter    Kind = "UnexpectedCharacter"
	UnterminatedString     Kind = "UnterminatedString"
	ExpectedExpression     Kind = "ExpectedExpression"
	UnexpectedToken        Kind = "UnexpectedToken"
	UnknownIdentifier      Kind = "UnknownIdentifier"
	TypeMismatch           Kind = "TypeMismatch"
	ExpectedFunction       Kind = "ExpectedFunction"
	WrongNumberOfArguments Kind = "WrongNumberOfArguments"
	InvalidArgument        Kind = "InvalidArgument"
	PatternMatchFailure    Kind = "PatternMatchFailure"
	ModuleNotFound         Kind = "ModuleNotFound"
	CycleDetected          Kind = "CycleDetected"
	UserCrash              Kind = "UserCrash"
	IntegerOverflow        Kind = "IntegerOverflow"
	DivisionByZero         Kind = "DivisionByZero"
)

// codes gives each kind a short code used in the JSON error payload.
// Metadata only: it never drives control flow.
var codes = map[Kind]string{
	UnexpectedCharacter:    "E-LEX-001",
	UnterminatedString:     "E-LEX-002",
	ExpectedExpression:     "E-PARSE-001",
	UnexpectedToken:        "E-PARSE-002",
	UnknownIdentifier:      "E-EVAL-001",
	TypeMismatch:           "E-EVAL-002",
	ExpectedFunction:       "E-EVAL-003",
	WrongNumberOfArguments: "E-EVAL-004",
	InvalidArgument:        "E-EVAL-005",
	PatternMatchFailure:    "E-EVAL-006",
	ModuleNotFound:         "E-EVAL-007",
	CycleDetected:          "E-EVAL-008",
	UserCrash:              "E-EVAL-009",
	IntegerOverflow:        "E-EVAL-010",
	DivisionByZero:         "E-EVAL-011",
}

// Location is a source span: a 1-based line/column, a byte offset, and a
// length in bytes. Invariant (spec §3, invariant 1): line >= 1, column >=
// 1, offset within source bounds, length >= 0.
type Location struct {
	Line   int
	Column int
	Offset int
	Length int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Payload is a structured detail blob specific to one error Kind. Every
// concrete payload type below implements it as a marker so SourceError.Data
// can hold exactly one variant matching its Kind.
type Payload interface {
	Kind() Kind
}

type UnknownIdentifierPayload struct{ Name string }

func (UnknownIdentifierPayload) Kind() Kind { return UnknownIdentifier }

type TypeMismatchPayload struct{ Expected, Found string }

func (TypeMismatchPayload) Kind() Kind { return TypeMismatch }

type WrongNumberOfArgumentsPayload struct{ Expected, Got int }

func (WrongNumberOfArgumentsPayload) Kind() Kind { return WrongNumberOfArguments }

type InvalidArgumentPayload struct{ Detail string }

func (InvalidArgumentPayload) Kind() Kind { return InvalidArgument }

type ModuleNotFoundPayload struct{ ModuleName string }

func (ModuleNotFoundPayload) Kind() Kind { return ModuleNotFound }

type UnexpectedTokenPayload struct{ Expected, Context string }

func (UnexpectedTokenPayload) Kind() Kind { return UnexpectedToken }

type UserCrashPayload struct{ Message string }

func (UserCrashPayload) Kind() Kind { return UserCrash }

// SourceError is the single exported error type produced anywhere in the
// pipeline. It implements the standard `error` interface so it can flow
// through ordinary Go control flow, while still exposing everything a
// reporter or JSON consumer needs.
type SourceError struct {
	Kind      Kind
	Code      string
	Message   string
	Hints     []string
	File      string
	Location  Location
	Secondary *Location // optional secondary location, e.g. "also defined at"
	Labels    []string  // labels attached to Location/Secondary, in order
	Payload   Payload
}

// New builds a SourceError, filling Code from the closed Kind->code table.
func New(kind Kind, loc Location, message string, hints ...string) *SourceError {
	return &SourceError{
		Kind:     kind,
		Code:     codes[kind],
		Message:  message,
		Hints:    hints,
		Location: loc,
	}
}

// WithPayload attaches structured detail and returns the same error for chaining.
func (e *SourceError) WithPayload(p Payload) *SourceError {
	e.Payload = p
	return e
}

// WithFile returns a copy with the file path set.
func (e *SourceError) WithFile(file string) *SourceError {
	c := *e
	c.File = file
	return &c
}

// WithSecondary attaches a secondary location and its label.
func (e *SourceError) WithSecondary(loc Location, label string) *SourceError {
	c := *e
	c.Secondary = &loc
	c.Labels = append(append([]string{}, c.Labels...), label)
	return &c
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s: %s", e.File, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// jsonError mirrors the CLI-side JSON error payload contract from spec §7.
type jsonError struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Length  int    `json:"length,omitempty"`
}

// ToJSON renders the `{kind, message, file?, line?, column?, length?}`
// payload the CLI's JSON error flag is specified to emit.
func (e *SourceError) ToJSON() ([]byte, error) {
	return json.Marshal(jsonError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		File:    e.File,
		Line:    e.Location.Line,
		Column:  e.Location.Column,
		Length:  e.Location.Length,
	})
}

// SourceRegistry maps a canonical filename to its source text, so a later
// reporter can re-extract the erroring line without touching disk again.
// Shared by the error reporter, REPL re-display, and the import cache.
type SourceRegistry struct {
	sources map[string]string
	order   []string
}

func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{sources: make(map[string]string)}
}

// Register records source text under filename, unless already present.
func (r *SourceRegistry) Register(filename, text string) {
	if _, ok := r.sources[filename]; ok {
		return
	}
	r.sources[filename] = text
	r.order = append(r.order, filename)
}

func (r *SourceRegistry) Get(filename string) (string, bool) {
	text, ok := r.sources[filename]
	return text, ok
}

// Line returns the 1-indexed source line for filename, or "" if unknown.
func (r *SourceRegistry) Line(filename string, line int) string {
	text, ok := r.sources[filename]
	if !ok || line < 1 {
		return ""
	}
	start, cur := 0, 1
	for i := 0; i < len(text) && cur < line; i++ {
		if text[i] == '\n' {
			cur++
			start = i + 1
		}
	}
	if cur != line {
		return ""
	}
	end := start
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return text[start:end]
}

// Context is the per-evaluation mutable scratchpad described in spec §3 and
// §4.5: current file, owner flag, the shared source registry, the most
// recent error's location, and the user-crash message slot for `crash`.
//
// It is owned by the caller and passed by reference through every Evaluate
// call; nothing in the evaluator retains it beyond one top-level
// evaluation.
type Context struct {
	CurrentFile      string
	Owner            bool
	Sources          *SourceRegistry
	LastKind         Kind
	LastLocation     Location
	LastSecondary    *Location
	LastLabels       []string
	LastPayload      Payload
	UserCrashMessage string
}

// NewContext creates an evaluation error-context with a fresh registry.
func NewContext(file string) *Context {
	return &Context{CurrentFile: file, Owner: true, Sources: NewSourceRegistry()}
}

// Reset clears stale error fields. Called once, after stdlib priming and
// before evaluating the top-level expression, so a successful import does
// not leak its last-touched location into a later error from the main file.
func (c *Context) Reset() {
	c.LastKind = ""
	c.LastLocation = Location{}
	c.LastSecondary = nil
	c.LastLabels = nil
	c.LastPayload = nil
	c.UserCrashMessage = ""
}

// Fail records the given error in the context and returns it unmodified,
// so call sites can write `return ctx.Fail(errors.New(...))`.
func (c *Context) Fail(err *SourceError) *SourceError {
	if err.File == "" && c.CurrentFile != "" {
		err = err.WithFile(c.CurrentFile)
	}
	c.LastKind = err.Kind
	c.LastLocation = err.Location
	c.LastSecondary = err.Secondary
	c.LastLabels = err.Labels
	c.LastPayload = err.Payload
	if err.Kind == UserCrash {
		if p, ok := err.Payload.(UserCrashPayload); ok {
			c.UserCrashMessage = p.Message
		}
	}
	return err
}
