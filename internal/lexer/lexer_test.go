package lexer

import (
	"testing"

	"github.com/kotabrog/go-computor/internal/token"
)

func TestTokenizeAllKinds(t *testing.T) {
	input := "()^*/%**+-i=?[],;a1A2zz ZZ123.098"
	want := []token.Token{
		{Type: token.LPAREN, Literal: "("},
		{Type: token.RPAREN, Literal: ")"},
		{Type: token.CARET, Literal: "^"},
		{Type: token.STAR, Literal: "*"},
		{Type: token.SLASH, Literal: "/"},
		{Type: token.PERCENT, Literal: "%"},
		{Type: token.DSTAR, Literal: "**"},
		{Type: token.PLUS, Literal: "+"},
		{Type: token.MINUS, Literal: "-"},
		{Type: token.IMAG, Literal: "i"},
		{Type: token.EQUAL, Literal: "="},
		{Type: token.QUESTION, Literal: "?"},
		{Type: token.LBRACKET, Literal: "["},
		{Type: token.RBRACKET, Literal: "]"},
		{Type: token.COMMA, Literal: ","},
		{Type: token.SEMI, Literal: ";"},
		{Type: token.IDENT, Literal: "a"},
		{Type: token.NUMBER, Literal: "1"},
		{Type: token.IDENT, Literal: "A"},
		{Type: token.NUMBER, Literal: "2"},
		{Type: token.IDENT, Literal: "zz"},
		{Type: token.IDENT, Literal: "ZZ"},
		{Type: token.NUMBER, Literal: "123.098"},
	}

	got, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i].Type != want[i].Type || got[i].Literal != want[i].Literal {
			t.Errorf("token %d: got %s(%q), want %s(%q)", i, got[i].Type, got[i].Literal, want[i].Type, want[i].Literal)
		}
	}
}

func TestTokenizeStarPromotion(t *testing.T) {
	cases := []struct {
		input string
		want  []token.Type
	}{
		{"*", []token.Type{token.STAR}},
		{"**", []token.Type{token.DSTAR}},
		{"***", []token.Type{token.DSTAR, token.STAR}},
		{"** *", []token.Type{token.DSTAR, token.STAR}},
	}
	for _, c := range cases {
		got, err := Tokenize(c.input)
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", c.input, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("Tokenize(%q): got %d tokens, want %d", c.input, len(got), len(c.want))
		}
		for i, tt := range c.want {
			if got[i].Type != tt {
				t.Errorf("Tokenize(%q)[%d]: got %s, want %s", c.input, i, got[i].Type, tt)
			}
		}
	}
}

func TestTokenizeIdentifierDigitSplit(t *testing.T) {
	got, err := Tokenize("abc123def")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Token{
		{Type: token.IDENT, Literal: "abc"},
		{Type: token.NUMBER, Literal: "123"},
		{Type: token.IDENT, Literal: "def"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Type != want[i].Type || got[i].Literal != want[i].Literal {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeUppercaseIIsUnsupported(t *testing.T) {
	if _, err := Tokenize("3 + I"); err == nil {
		t.Fatal("expected error for uppercase I, got nil")
	}
}

func TestTokenizeUnsupportedCharacter(t *testing.T) {
	if _, err := Tokenize("3 & 4"); err == nil {
		t.Fatal("expected error for '&', got nil")
	}
}

func TestTokenizeMalformedDot(t *testing.T) {
	cases := []string{"1.2.3", ".5", "1..5"}
	for _, in := range cases {
		if _, err := Tokenize(in); err == nil {
			t.Errorf("Tokenize(%q): expected error, got nil", in)
		}
	}
}

func TestTokenizeWithSourcePrefixesError(t *testing.T) {
	_, err := Tokenize("3 & 4", WithSource("repl"))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got[:5] != "repl:" {
		t.Errorf("error %q does not carry source prefix", got)
	}
}
