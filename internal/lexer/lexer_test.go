package lexer

import (
	"testing"

	"github.com/cwbudde/go-bob/internal/token"
)

func kinds(src string) []token.Kind {
	l := New(src)
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	got := kinds(`var x = 1 + 2 * 3;`)
	want := []token.Kind{
		token.VAR, token.IDENT, token.ASSIGN, token.INTEGER,
		token.PLUS, token.INTEGER, token.STAR, token.INTEGER,
		token.SEMICOLON, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	got := kinds(`if else func for foreach while do class extends extension super this none return break continue import from as in try catch finally throw myVar`)
	want := []token.Kind{
		token.IF, token.ELSE, token.FUNC, token.FOR, token.FOREACH, token.WHILE,
		token.DO, token.CLASS, token.EXTENDS, token.EXTENSION, token.SUPER,
		token.THIS, token.NONE, token.RETURN, token.BREAK, token.CONTINUE,
		token.IMPORT, token.FROM, token.AS, token.IN, token.TRY, token.CATCH,
		token.FINALLY, token.THROW, token.IDENT, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexerStringLiteral(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.Next()
	if tok.Kind != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Kind)
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	got := kinds(`42 3.14`)
	want := []token.Kind{token.INTEGER, token.NUMBER, token.EOF}
	assertKinds(t, got, want)
}

func TestLexerComments(t *testing.T) {
	got := kinds("1 // trailing comment\n+ /* block */ 2")
	want := []token.Kind{token.INTEGER, token.PLUS, token.INTEGER, token.EOF}
	assertKinds(t, got, want)
}

func TestLexerCompoundOperators(t *testing.T) {
	got := kinds(`a += 1; b == c; d != e; f <= g; h >= i;`)
	want := []token.Kind{
		token.IDENT, token.PLUSEQ, token.INTEGER, token.SEMICOLON,
		token.IDENT, token.EQ, token.IDENT, token.SEMICOLON,
		token.IDENT, token.NEQ, token.IDENT, token.SEMICOLON,
		token.IDENT, token.LTE, token.IDENT, token.SEMICOLON,
		token.IDENT, token.GTE, token.IDENT, token.SEMICOLON,
		token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexerLineColumnTracking(t *testing.T) {
	l := New("a\nbb")
	first := l.Next()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("expected 1:1, got %s", first.Pos)
	}
	second := l.Next()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("expected 2:1, got %s", second.Pos)
	}
}

func assertKinds(t *testing.T, got, want []token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
