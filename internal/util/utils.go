package util

import (
	"bytes"
	"fmt"
	"strings"
)

func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders the line holding pos, preceded by the line
// before it, with a caret under the offending column.
func GetContextLines(src string, pos int) string {
	var result bytes.Buffer

	errorLine, errorCol := GetLineAndColumn(src, pos)
	lines := strings.Split(src, "\n")

	startLine := max(errorLine-1, 1)
	for i := startLine; i <= errorLine && i <= len(lines); i++ {
		lineContent := lines[i-1]
		if i != errorLine {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
			continue
		}
		margin := fmt.Sprintf("  >  %3d | ", i)
		result.WriteString(margin + lineContent + "\n")
		prefix := lineContent[:min(errorCol-1, len(lineContent))]
		result.WriteString(replaceVisibleWithSpaces(margin+prefix) + "^")
	}

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
