// Package locator finds the JSON object a chat model embedded in its reply.
//
// Two shapes are recognised: a fenced code block (``` or ```json) holding an
// object, and a raw object inlined in prose. Detection is shared between
// Locate and Strip so both always agree on where the payload begins and ends.
package locator

import "strings"

const fence = "```"

// Block is the result of locating a payload in one snapshot of message text.
type Block struct {
	IntroText string // prose before the payload, trimmed
	JSONText  string // the balanced object, only meaningful when Found
	Found     bool
	Pending   bool // an opener was seen but the object is not closed yet
}

type spanKind int

const (
	spanNone spanKind = iota
	spanIncomplete
	spanFenced
	spanRaw
)

// span holds the outer bounds of the payload (including fence markers for
// fenced blocks) and the bounds of the object itself.
type span struct {
	kind     spanKind
	start    int
	end      int
	objStart int
	objEnd   int
}

func (s span) complete() bool {
	return s.kind == spanFenced || s.kind == spanRaw
}

// Locate returns the intro prose and the embedded object of text. An object
// that has not been closed yet is reported as not found. Locate never panics.
func Locate(text string) (block Block) {
	defer func() {
		if recover() != nil {
			block = Block{IntroText: strings.TrimSpace(text)}
		}
	}()

	s := find(text)
	switch {
	case s.kind == spanNone:
		return Block{IntroText: strings.TrimSpace(text)}
	case !s.complete():
		return Block{IntroText: strings.TrimSpace(text[:s.start]), Pending: true}
	}

	return Block{
		IntroText: strings.TrimSpace(text[:s.start]),
		JSONText:  text[s.objStart:s.objEnd],
		Found:     true,
	}
}

// Span returns the outer byte offsets of the first complete payload in text.
// For a fenced block the range covers the opening and closing backticks.
func Span(text string) (start, end int, ok bool) {
	defer func() {
		if recover() != nil {
			start, end, ok = 0, 0, false
		}
	}()

	s := find(text)
	if !s.complete() {
		return 0, 0, false
	}
	return s.start, s.end, true
}

// Strip removes every complete fenced payload, then the first complete raw
// object left over, and returns the remaining prose trimmed. Incomplete
// payloads stay in place.
func Strip(text string) (out string) {
	defer func() {
		if recover() != nil {
			out = strings.TrimSpace(text)
		}
	}()

	rest := text
	for {
		s, ok := findFenced(rest)
		if !ok || !s.complete() {
			break
		}
		rest = rest[:s.start] + rest[s.end:]
	}
	if s := findRaw(rest); s.complete() {
		rest = rest[:s.start] + rest[s.end:]
	}
	return strings.TrimSpace(rest)
}

// find prefers a complete fenced block. A fence that has no complete object
// yet only wins over the raw scan when that scan has no complete object either.
func find(text string) span {
	fenced, ok := findFenced(text)
	if ok && fenced.complete() {
		return fenced
	}
	if raw := findRaw(text); raw.complete() || !ok {
		return raw
	}
	return fenced
}

// findFenced looks for the first fence opener followed by an optional json tag
// and an object. Fenced blocks holding anything else are skipped as a pair.
// ok is false when no fence holds an object. An opener whose object has not
// closed yet comes back with ok and an incomplete span.
func findFenced(text string) (span, bool) {
	from := 0
	for {
		idx := strings.Index(text[from:], fence)
		if idx < 0 {
			return span{}, false
		}
		open := from + idx

		pos := open + len(fence)
		if hasPrefixFold(text[pos:], "json") {
			pos += len("json")
		}
		pos = skipSpace(text, pos)

		if pos == len(text) {
			// opener streamed, object not yet
			return span{kind: spanIncomplete, start: open}, true
		}

		next := pos
		if text[pos] == '{' {
			objEnd, ok := scanObject(text, pos)
			if !ok {
				return span{kind: spanIncomplete, start: open}, true
			}

			after := skipSpace(text, objEnd)
			switch {
			case strings.HasPrefix(text[after:], fence):
				return span{kind: spanFenced, start: open, end: after + len(fence), objStart: pos, objEnd: objEnd}, true
			case strings.HasPrefix(fence, text[after:]):
				// closing fence not (fully) streamed yet
				return span{kind: spanFenced, start: open, end: len(text), objStart: pos, objEnd: objEnd}, true
			}
			next = objEnd
		}

		closeIdx := strings.Index(text[next:], fence)
		if closeIdx < 0 {
			return span{}, false
		}
		from = next + closeIdx + len(fence)
	}
}

func findRaw(text string) span {
	open := strings.IndexByte(text, '{')
	if open < 0 {
		return span{kind: spanNone}
	}

	end, ok := scanObject(text, open)
	if !ok {
		return span{kind: spanIncomplete, start: open}
	}
	return span{kind: spanRaw, start: open, end: end, objStart: open, objEnd: end}
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
