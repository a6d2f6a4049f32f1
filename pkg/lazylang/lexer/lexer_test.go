package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 1 + 2;
x * 4
#ok
"hello" 'world'
1.5 1..5 x.0
-> == != <= >= && || ... ..
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "let"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "1"},
		{PLUS, "+"},
		{INT, "2"},
		{SEMI, ";"},
		{IDENT, "x"},
		{STAR, "*"},
		{INT, "4"},
		{SYMBOL, "#ok"},
		{STRING, `"hello"`},
		{STRING, `'world'`},
		{FLOAT, "1.5"},
		{INT, "1"},
		{DOTDOT, ".."},
		{INT, "5"},
		{IDENT, "x"},
		{DOT, "."},
		{INT, "0"},
		{ARROW, "->"},
		{EQ, "=="},
		{NEQ, "!="},
		{LTE, "<="},
		{GTE, ">="},
		{ANDAND, "&&"},
		{OROR, "||"},
		{ELLIPSIS, "..."},
		{DOTDOT, ".."},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("test[%d]: unexpected lex error: %v", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d]: type wrong, expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d]: literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestDocComments(t *testing.T) {
	input := `/// module doc
/// ---
/// field doc
x: 1`
	l := New(input)
	tok, err := l.NextToken() // "x"
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Literal != "x" {
		t.Fatalf("expected x, got %q", tok.Literal)
	}
	if tok.DocComment != "field doc" {
		t.Fatalf("expected field doc, got %q", tok.DocComment)
	}
	if mod := l.LastModuleDoc(); mod != "module doc" {
		t.Fatalf("expected module doc, got %q", mod)
	}
}

func TestLayoutFlags(t *testing.T) {
	l := New("f x\nf .name")
	// f
	if tok, err := l.NextToken(); err != nil || tok.PrecededByWhitespace {
		t.Fatalf("first token should have no leading whitespace: %+v %v", tok, err)
	}
	// x
	tok, _ := l.NextToken()
	if !tok.PrecededByWhitespace || tok.PrecededByNewline {
		t.Fatalf("x should be preceded by space, no newline: %+v", tok)
	}
	// f (after newline)
	tok, _ = l.NextToken()
	if !tok.PrecededByNewline {
		t.Fatalf("second f should be preceded by newline: %+v", tok)
	}
	// .
	tok, _ = l.NextToken()
	if !tok.PrecededByWhitespace {
		t.Fatalf("dot after space should carry the flag: %+v", tok)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"no closing quote`)
	_, err := l.NextToken()
	if err == nil || err.Kind != "UnterminatedString" {
		t.Fatalf("expected UnterminatedString, got %v", err)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New("@")
	_, err := l.NextToken()
	if err == nil || err.Kind != "UnexpectedCharacter" {
		t.Fatalf("expected UnexpectedCharacter, got %v", err)
	}
}
