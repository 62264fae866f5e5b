package namegen

import (
	"fmt"
	"strings"
)

type itemKind int

const (
	itemText itemKind = iota
	itemPart
	itemFormat
)

type formatItem struct {
	kind itemKind
	text string
	ref  int
}

// format is a parsed template: one or more alternatives, each a sequence of
// literal text, part references, and references to earlier formats.
type format struct {
	name         string
	template     string
	alternatives [][]formatItem
}

// parseTemplate parses a format template. Outside braces text is literal;
// "|" separates alternatives. Inside braces, "{part}" inserts a part,
// "{:format}" inserts another format and "{=text}" inserts text verbatim.
// Lookup functions resolve references to indices.
func parseTemplate(template string, lookupPart, lookupFormat func(string) (int, bool)) ([][]formatItem, error) {
	var (
		alternatives [][]formatItem
		current      []formatItem
		text         strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			current = append(current, formatItem{kind: itemText, text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		switch c := template[i]; c {
		case '|':
			flush()
			alternatives = append(alternatives, current)
			current = nil
		case '{':
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated '{' at offset %d", i)
			}
			ref := template[i+1 : i+1+end]
			i += end + 1

			switch {
			case strings.HasPrefix(ref, "="):
				text.WriteString(ref[1:])
			case strings.HasPrefix(ref, ":"):
				idx, ok := lookupFormat(ref[1:])
				if !ok {
					return nil, fmt.Errorf("unknown format %q", ref[1:])
				}
				flush()
				current = append(current, formatItem{kind: itemFormat, ref: idx})
			default:
				idx, ok := lookupPart(ref)
				if !ok {
					return nil, fmt.Errorf("unknown part %q", ref)
				}
				flush()
				current = append(current, formatItem{kind: itemPart, ref: idx})
			}
		case '}':
			return nil, fmt.Errorf("unexpected '}' at offset %d", i)
		default:
			text.WriteByte(c)
		}
	}
	flush()
	alternatives = append(alternatives, current)
	return alternatives, nil
}
