package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TylerBrock/colorjson"
	"github.com/fatih/color"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

var (
	keyColor      = color.New(color.FgCyan, color.Bold)
	operatorColor = color.New(color.FgYellow)
	valueColor    = color.New(color.FgGreen)
	negatedColor  = color.New(color.FgMagenta, color.Bold)
	invalidColor  = color.New(color.FgRed, color.Underline)
	dimColor      = color.New(color.Faint)
	titleColor    = color.New(color.Bold)
	activeColor   = color.New(color.FgBlack, color.BgCyan)
)

// JSON writes v indented, colored when color is enabled.
func JSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if !IsColorEnabled() {
		var out []byte
		if out, err = json.MarshalIndent(json.RawMessage(data), "", "  "); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f := colorjson.NewFormatter()
	f.Indent = 2
	out, err := f.Marshal(obj)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Highlight colors a query by token. A query that does not parse is
// returned unchanged.
func Highlight(text string, tree *query.ParsedQuery) string {
	if tree == nil {
		return text
	}

	var b strings.Builder
	for _, tok := range tree.Tokens {
		highlightToken(&b, text, tok)
	}
	return b.String()
}

func highlightToken(b *strings.Builder, text string, tok *query.Token) {
	span := text[tok.Location.Start:tok.Location.End]

	switch tok.Kind {
	case query.TokenFilter:
		if tok.IsInvalid() {
			b.WriteString(invalidColor.Sprint(span))
			return
		}
		if tok.Negated {
			b.WriteString(negatedColor.Sprint(query.NegationMarker))
		}
		b.WriteString(keyColor.Sprint(tok.Key.Text))
		b.WriteString(operatorColor.Sprint(text[tok.Key.Location.End:tok.Value.Location.Start]))
		b.WriteString(valueColor.Sprint(text[tok.Value.Location.Start:tok.Value.Location.End]))
	case query.TokenLogicBoolean:
		b.WriteString(operatorColor.Sprint(span))
	case query.TokenLogicGroup:
		b.WriteString(operatorColor.Sprint("("))
		for _, inner := range tok.Inner {
			highlightToken(b, text, inner)
		}
		b.WriteString(operatorColor.Sprint(")"))
	default:
		b.WriteString(span)
	}
}

// Tree writes one line per token with its location.
func Tree(w io.Writer, text string, tree *query.ParsedQuery) {
	if tree == nil {
		fmt.Fprintln(w, invalidColor.Sprint("query does not parse"))
		return
	}

	var walk func(tokens []*query.Token, depth int)
	walk = func(tokens []*query.Token, depth int) {
		for _, tok := range tokens {
			if tok.Kind == query.TokenSpaces {
				continue
			}
			indent := strings.Repeat("  ", depth)
			line := fmt.Sprintf("%s%-10s %s", indent, tok.Kind, dimColor.Sprintf("[%d,%d]", tok.Location.Start, tok.Location.End))
			fmt.Fprintf(w, "%s %q", line, text[tok.Location.Start:tok.Location.End])
			if tok.Invalid != "" {
				fmt.Fprintf(w, " %s", invalidColor.Sprint(tok.Invalid))
			}
			fmt.Fprintln(w)
			if tok.Kind == query.TokenLogicGroup {
				walk(tok.Inner, depth+1)
			}
		}
	}
	walk(tree.Tokens, 0)
}

// Suggestions writes the flattened suggestions under their section
// titles. The active item is highlighted, -1 for none.
func Suggestions(w io.Writer, res autocomplete.Result, active int) {
	fmt.Fprintln(w, dimColor.Sprintf("state: %s", res.State))

	if len(res.Suggestions.Items) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("no suggestions"))
		return
	}

	index := 0
	for _, group := range res.Suggestions.Groups {
		if group.Title != "" {
			fmt.Fprintln(w, titleColor.Sprint(group.Title))
		}
		for _, item := range group.Children {
			line := "  " + item.Title
			if item.Description != "" {
				line += "  " + dimColor.Sprint(item.Description)
			}
			if item.Exceeds {
				line += "  " + invalidColor.Sprint("too long")
			}
			if index == active {
				line = activeColor.Sprint(line)
			}
			fmt.Fprintln(w, line)
			index++
		}
	}
}
