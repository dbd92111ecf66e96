package locator

// scanState tracks whether the scanner sits in structural JSON, inside a
// string literal, or right after a backslash inside a string literal.
type scanState int

const (
	scanNormal scanState = iota
	scanInString
	scanInEscape
)

// scanObject walks forward from the '{' at text[start] and returns the offset
// just past the brace that brings the depth back to zero. Braces inside string
// literals are ignored. ok is false when the text ends before the object
// closes, which is the normal state while a reply is still streaming.
func scanObject(text string, start int) (end int, ok bool) {
	depth := 0
	state := scanNormal

	for i := start; i < len(text); i++ {
		c := text[i]

		switch state {
		case scanInEscape:
			state = scanInString

		case scanInString:
			switch c {
			case '\\':
				state = scanInEscape
			case '"':
				state = scanNormal
			}

		default:
			switch c {
			case '"':
				state = scanInString
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i + 1, true
				}
			}
		}
	}

	return 0, false
}
