package core

// tokenizer.go splits CSV text into records.
//
// The rules are deliberately small: a double quote toggles quoted mode and
// is never copied into the field, and a comma ends a field only outside
// quotes. Escaped quotes ("") and quoted newlines are not supported, and an
// unbalanced quote is accepted silently.

import "strings"

// Tokenize splits text into lines and each line into fields.
// Lines that are empty after trimming are discarded. Returns nil when fewer
// than two lines remain, since a header with no data rows is not importable.
func Tokenize(text string) [][]string {
	records, _ := TokenizeLines(text)
	return records
}

// TokenizeLines is Tokenize that also returns the 1-based line number each
// record was read from.
func TokenizeLines(text string) ([][]string, []int) {
	lines := strings.Split(text, "\n")

	records := make([][]string, 0, len(lines))
	numbers := make([]int, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, TokenizeLine(strings.TrimSuffix(line, "\r")))
		numbers = append(numbers, i+1)
	}

	if len(records) < 2 {
		return nil, nil
	}
	return records, numbers
}

// TokenizeLine splits one line into fields. Fields are not trimmed.
func TokenizeLine(line string) []string {
	var (
		fields   []string
		buf      strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}

	return append(fields, buf.String())
}
