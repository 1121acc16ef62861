package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bascanada/smartsearch/pkg/query"
)

func TestClassify(t *testing.T) {
	text := "!level:error AND (count:5) oops"
	got := classify(text, query.Parse(text))

	expect := map[int]class{
		0:  classNegation,
		1:  classKey,
		6:  classOperator,
		7:  classValue,
		12: classPlain,
		13: classBoolean,
		17: classParen,
		18: classKey,
		23: classOperator,
		24: classValue,
		25: classParen,
		27: classPlain,
	}
	for pos, c := range expect {
		assert.Equal(t, c, got[pos], "byte %d (%q)", pos, text[pos])
	}
}

func TestClassify_ListsAndInvalid(t *testing.T) {
	text := "a:[x, y] b:>1"
	got := classify(text, query.Parse(text))

	assert.Equal(t, classParen, got[2])
	assert.Equal(t, classValue, got[3])
	assert.Equal(t, classParen, got[4])
	assert.Equal(t, classValue, got[6])
	for i := 9; i < len(text); i++ {
		assert.Equal(t, classInvalid, got[i])
	}
}

func TestClassify_Unparsable(t *testing.T) {
	text := `a:"open`
	got := classify(text, query.Parse(text))
	assert.Len(t, got, len(text))
	for _, c := range got {
		assert.Equal(t, classPlain, c)
	}
}

func TestRenderQuery_Cursor(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, "level:error ", renderQuery("level:error", query.Parse("level:error"), 11, s))
	assert.Equal(t, "level:error", renderQuery("level:error", query.Parse("level:error"), -1, s))
	assert.Equal(t, "héllo", renderQuery("héllo", query.Parse("héllo"), 1, s))
}
