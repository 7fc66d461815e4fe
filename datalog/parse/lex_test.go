package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexTokens(t *testing.T) {
	require := require.New(t)

	l := newLexer("ancestor(X, Y) :- parent(X, Y).")
	var kinds []tokenKind
	var texts []string
	for {
		tok, err := l.next()
		require.NoError(err)
		if tok.kind == tokEOF {
			break
		}
		kinds = append(kinds, tok.kind)
		texts = append(texts, tok.text)
	}

	require.Equal([]tokenKind{
		tokIdent, tokLParen, tokIdent, tokComma, tokIdent, tokRParen,
		tokTurnstile,
		tokIdent, tokLParen, tokIdent, tokComma, tokIdent, tokRParen,
		tokDot,
	}, kinds)
	require.Equal("ancestor", texts[0])
	require.Equal(":-", texts[6])
}

func TestLexPositions(t *testing.T) {
	require := require.New(t)

	l := newLexer("  foo  (")
	tok, err := l.next()
	require.NoError(err)
	require.Equal(2, tok.pos)
	tok, err = l.next()
	require.NoError(err)
	require.Equal(7, tok.pos)
}

func TestLexBadRune(t *testing.T) {
	require := require.New(t)

	l := newLexer("foo & bar")
	_, err := l.next()
	require.NoError(err)
	_, err = l.next()
	require.Error(err)
	require.True(ErrSyntax.Is(err))
}

func TestIsVariable(t *testing.T) {
	require := require.New(t)
	require.True(isVariable("X"))
	require.True(isVariable("_anything"))
	require.True(isVariable("Upper_case"))
	require.False(isVariable("lower"))
	require.False(isVariable("x2"))
}
