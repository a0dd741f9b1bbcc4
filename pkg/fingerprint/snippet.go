package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
)

// SnippetHash returns the SHA256 hex digest of lines line..endLine (1-based, inclusive)
// of the file at path. Surrounding whitespace of every line is ignored so re-indenting
// code keeps the hash stable. Returns an empty string when the file cannot be read or the
// range is outside the file.
func SnippetHash(path string, line, endLine int) string {
	if strings.TrimSpace(path) == "" || line <= 0 {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return Hash(string(data), line, endLine)
}

// Hash is SnippetHash over already loaded content.
func Hash(content string, line, endLine int) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	start := line
	end := line
	if endLine > line {
		end = endLine
	}
	if start < 1 || start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}

	snippet := make([]string, 0, end-start+1)
	for _, l := range lines[start-1 : end] {
		snippet = append(snippet, strings.TrimSpace(l))
	}
	sum := sha256.Sum256([]byte(strings.Join(snippet, "\n")))
	return fmt.Sprintf("%x", sum[:])
}
