package heuristics

import (
	"regexp"
	"strings"

	"github.com/scan-io-git/magelint/pkg/shared/errors"
)

var functionDeclRe = regexp.MustCompile(`(?:^|[\s;{}])function\s+&?\s*[A-Za-z_]\w*\s*\(`)

// FunctionBlock is a function located by brace counting.
type FunctionBlock struct {
	StartLine int
	EndLine   int
	Lines     []string
}

// Text joins the block lines.
func (b FunctionBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}

// ExtractFunction finds the first function declaration at or after startLine (1-based)
// and captures it up to the line where the brace balance returns to zero.
// A function left open at end of input is returned as captured so far.
func ExtractFunction(lines []string, startLine int) (FunctionBlock, error) {
	if startLine < 1 || startLine > len(lines) {
		return FunctionBlock{}, errors.NewFunctionBoundaryError(startLine, "line out of range")
	}

	var block FunctionBlock
	balance := 0
	opened := false
	for i := startLine - 1; i < len(lines); i++ {
		line := lines[i]
		if block.StartLine == 0 {
			if !functionDeclRe.MatchString(line) {
				continue
			}
			block.StartLine = i + 1
		}
		block.Lines = append(block.Lines, line)
		block.EndLine = i + 1

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")
		balance += opens - closes
		if opens > 0 {
			opened = true
		}
		if opened && closes > 0 && balance <= 0 {
			return block, nil
		}
	}

	if block.StartLine == 0 {
		return FunctionBlock{}, errors.NewFunctionBoundaryError(startLine, "no function declaration found")
	}
	return block, nil
}

// FunctionBody returns the body of the function found by ExtractFunction without the
// declaration line and outer braces. One-line functions yield the text between the first
// `{` and the last `}`.
func FunctionBody(lines []string, startLine int) (string, error) {
	block, err := ExtractFunction(lines, startLine)
	if err != nil {
		return "", err
	}

	if len(block.Lines) == 1 {
		line := block.Lines[0]
		open := strings.Index(line, "{")
		end := strings.LastIndex(line, "}")
		if open < 0 || end <= open {
			return "", nil
		}
		return strings.TrimSpace(line[open+1 : end]), nil
	}

	body := block.Lines[1:]
	if len(body) > 0 && strings.TrimSpace(body[0]) == "{" {
		body = body[1:]
	}
	if n := len(body); n > 0 && closed(block) {
		if strings.HasPrefix(strings.TrimSpace(body[n-1]), "}") {
			body = body[:n-1]
		} else if end := strings.LastIndex(body[n-1], "}"); end >= 0 {
			body[n-1] = strings.TrimRight(body[n-1][:end], " \t")
		}
	}
	return strings.Join(body, "\n"), nil
}

// closed reports whether the block ended on its balancing brace rather than at end of input.
func closed(block FunctionBlock) bool {
	text := block.Text()
	return strings.Count(text, "{") > 0 && strings.Count(text, "{") == strings.Count(text, "}")
}

// FunctionAt is ExtractFunction on raw content.
func FunctionAt(content string, startLine int) (FunctionBlock, error) {
	return ExtractFunction(strings.Split(content, "\n"), startLine)
}
