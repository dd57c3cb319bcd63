package compiler

import "testing"

// collectTokens scans src to completion, failing the test on lex errors.
func collectTokens(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Tokens()
	if err != nil {
		t.Fatalf("Tokens(%q) error: %v", src, err)
	}
	return toks
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		types []TokenType
	}{
		{"delimiters", "[ ] ( ) ,", []TokenType{TokenLBracket, TokenRBracket, TokenLParen, TokenRParen, TokenComma, TokenEOF}},
		{"assignment", "x = 1", []TokenType{TokenIdentifier, TokenAssign, TokenNumber, TokenEOF}},
		{"equality", "x == 1", []TokenType{TokenIdentifier, TokenOperator, TokenNumber, TokenEOF}},
		{"string", `"hello"`, []TokenType{TokenString, TokenEOF}},
		{"operators", "+ - * / % < >", []TokenType{TokenOperator, TokenOperator, TokenOperator, TokenOperator, TokenOperator, TokenOperator, TokenOperator, TokenEOF}},
		{"param binder", "$n", []TokenType{TokenIdentifier, TokenEOF}},
		{"empty", "", []TokenType{TokenEOF}},
		{"comment only", "# nothing here\n", []TokenType{TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collectTokens(t, tt.src)
			if len(toks) != len(tt.types) {
				t.Fatalf("got %d tokens, want %d: %v", len(toks), len(tt.types), toks)
			}
			for i, want := range tt.types {
				if toks[i].Type != want {
					t.Errorf("token %d = %s, want %s", i, toks[i].Type, want)
				}
			}
		})
	}
}

func TestLexerTokenValues(t *testing.T) {
	toks := collectTokens(t, `greet = "hi" # comment
print(greet, -42)`)

	want := []struct {
		typ   TokenType
		value string
	}{
		{TokenIdentifier, "greet"},
		{TokenAssign, "="},
		{TokenString, "hi"},
		{TokenIdentifier, "print"},
		{TokenLParen, "("},
		{TokenIdentifier, "greet"},
		{TokenComma, ","},
		{TokenNumber, "-42"},
		{TokenRParen, ")"},
	}

	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Value != w.value {
			t.Errorf("token %d = %s %q, want %s %q", i, toks[i].Type, toks[i].Value, w.typ, w.value)
		}
	}
}

func TestLexerLineNumbers(t *testing.T) {
	toks := collectTokens(t, "x = 1\ny = 2\n\nz = 3")

	wantLines := []int{1, 1, 1, 2, 2, 2, 4, 4, 4}
	for i, want := range wantLines {
		if toks[i].Line != want {
			t.Errorf("token %d (%s) on line %d, want %d", i, toks[i], toks[i].Line, want)
		}
	}
}

// The number rule greedily absorbs a leading minus, so `a-1` lexes as
// `a`, `-1` while `a - 1` lexes with an operator.
func TestLexerNegativeNumberAbsorption(t *testing.T) {
	toks := collectTokens(t, "a-1")
	if toks[0].Type != TokenIdentifier || toks[1].Type != TokenNumber || toks[1].Value != "-1" {
		t.Fatalf("a-1 = %v, want IDENT, NUMBER(-1)", toks[:2])
	}

	toks = collectTokens(t, "a - 1")
	if toks[1].Type != TokenOperator || toks[1].Value != "-" {
		t.Fatalf("a - 1 second token = %v, want OPERATOR(-)", toks[1])
	}

	toks = collectTokens(t, "1-1")
	if toks[0].Type != TokenNumber || toks[0].Value != "1" ||
		toks[1].Type != TokenNumber || toks[1].Value != "-1" {
		t.Fatalf("1-1 = %v, want NUMBER(1), NUMBER(-1)", toks[:2])
	}
}

func TestLexerDollarPreserved(t *testing.T) {
	toks := collectTokens(t, "[ $count, count ]")
	if toks[1].Value != "$count" {
		t.Errorf("param token value = %q, want %q", toks[1].Value, "$count")
	}
	if toks[3].Value != "count" {
		t.Errorf("reference token value = %q, want %q", toks[3].Value, "count")
	}
}

func TestLexerStringNoEscapes(t *testing.T) {
	toks := collectTokens(t, `"a\n"`)
	if toks[0].Value != `a\n` {
		t.Errorf("string value = %q, want literal backslash-n", toks[0].Value)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown byte", "x = 1\n@", 2},
		{"unterminated string", `x = "abc`, 1},
		{"bare dollar", "$ 1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.src).Tokens()
			if err == nil {
				t.Fatalf("Tokens(%q) succeeded, want error", tt.src)
			}
			lexErr, ok := err.(*LexError)
			if !ok {
				t.Fatalf("error type = %T, want *LexError", err)
			}
			if lexErr.Line != tt.line {
				t.Errorf("error line = %d, want %d", lexErr.Line, tt.line)
			}
		})
	}
}
