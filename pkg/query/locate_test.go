package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorToken(t *testing.T) {
	parsed := Parse("a:1 b:2 c:3")
	require.NotNil(t, parsed)

	tests := []struct {
		cursor int
		text   string
	}{
		{0, "a:1"},
		{3, "a:1"},
		{4, "b:2"},
		{5, "b:2"},
		{7, "b:2"},
		{8, "c:3"},
		{11, "c:3"},
	}

	for _, tt := range tests {
		tok := CursorToken(parsed, tt.cursor)
		require.NotNil(t, tok, "cursor %d", tt.cursor)
		assert.Equal(t, tt.text, tok.Text, "cursor %d", tt.cursor)
		assert.True(t, tok.Location.Contains(tt.cursor))
	}
}

func TestCursorToken_NoMatch(t *testing.T) {
	assert.Nil(t, CursorToken(nil, 0))

	parsed := Parse("a:1   b:2")
	require.NotNil(t, parsed)
	assert.Nil(t, CursorToken(parsed, 4))
}

func TestCursorToken_InsideGroup(t *testing.T) {
	parsed := Parse("(a:1 OR foo)")
	require.NotNil(t, parsed)

	tok := CursorToken(parsed, 10)
	require.NotNil(t, tok)
	assert.Equal(t, TokenFreeText, tok.Kind)
	assert.Equal(t, "foo", tok.Text)
}

func TestCursorValue(t *testing.T) {
	parsed := Parse("a:1 b:2")
	require.NotNil(t, parsed)

	value := CursorValue(parsed, 6)
	require.NotNil(t, value)
	assert.Equal(t, Location{Start: 6, End: 7}, value.Location)

	assert.Nil(t, CursorValue(parsed, 4))

	list := Parse("browser:[chrome, edge]")
	require.NotNil(t, list)
	item := CursorValue(list, 12)
	require.NotNil(t, item)
	assert.Equal(t, "chrome", item.Text)
}

func TestCursorSearchTerm(t *testing.T) {
	parsed := Parse("a:1 !envi level:err")
	require.NotNil(t, parsed)

	free := CursorToken(parsed, 9)
	require.NotNil(t, free)
	assert.Equal(t, SearchTerm{Start: 5, End: 9, SearchTerm: "envi"}, CursorSearchTerm(free, 9))

	filter := CursorToken(parsed, 13)
	require.NotNil(t, filter)
	assert.Equal(t, SearchTerm{Start: 10, End: 15, SearchTerm: "level"}, CursorSearchTerm(filter, 13))
	assert.Equal(t, SearchTerm{Start: 16, End: 19, SearchTerm: "err"}, CursorSearchTerm(filter, 18))
}

func TestFilterTokens(t *testing.T) {
	assert.Empty(t, FilterTokens(nil))

	parsed := Parse("a:1 (b:2 OR foo) c:3")
	require.NotNil(t, parsed)

	var keys []string
	for _, f := range FilterTokens(parsed) {
		keys = append(keys, f.KeyName())
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(nil))
	assert.True(t, IsValid(Parse("count:5 message", WithKeyKind(testKinds))))
	assert.False(t, IsValid(Parse("count:abc", WithKeyKind(testKinds))))
	assert.False(t, IsValid(Parse("(a:1 OR count:abc)", WithKeyKind(testKinds))))
}

func TestWalk_SkipAndReturn(t *testing.T) {
	parsed := Parse("a:1 b:2")
	require.NotNil(t, parsed)

	var visited []TokenKind
	found := Walk(parsed, func(tok *Token) Visit {
		visited = append(visited, tok.Kind)
		if tok.Kind == TokenValueText && tok.Text == "2" {
			return Return
		}
		return Continue
	})

	require.NotNil(t, found)
	assert.Equal(t, "2", found.Text)
	assert.Equal(t, []TokenKind{
		TokenFilter, TokenKeySimple, TokenValueText,
		TokenSpaces,
		TokenFilter, TokenKeySimple, TokenValueText,
	}, visited)
}
