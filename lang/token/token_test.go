package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing string representation", tok)
	}
	require.Equal(t, "illegal token", Token(-1).String())
	require.Equal(t, "illegal token", maxToken.String())
}

func TestTokenGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'--'", MINUSMINUS.GoString())
	require.Equal(t, "var", VAR.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestKeywords(t *testing.T) {
	for tok := VAR; tok < maxToken; tok++ {
		got, ok := Keywords[tok.String()]
		require.True(t, ok, "keyword %q missing from Keywords", tok)
		require.Equal(t, tok, got)
	}
	require.Len(t, Keywords, int(maxToken-VAR))

	_, ok := Keywords["notakeyword"]
	require.False(t, ok)
	_, ok = Keywords["+"]
	require.False(t, ok)
}
