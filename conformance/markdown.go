package conformance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence languages understood in Markdown suites
const (
	fenceFrog         = "frog"          // program source
	fenceFrogNoOpt    = "frog-noopt"    // program source compiled without the optimizer
	fenceDisasm       = "disasm"        // exact listing
	fenceContains     = "contains"      // one required listing line per line
	fenceCompileError = "compile-error" // substring of the expected error
)

// ExtractTestCases parses a Markdown document into test cases. Each test
// starts at a heading "Test: <name>" and holds one input fence followed by
// assertion fences.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var tests []TestCase
	var current *TestCase
	hasInput := false

	finish := func() error {
		if current == nil {
			return nil
		}
		if !hasInput {
			return fmt.Errorf("test '%s' has no input fence", current.Name)
		}
		if current.Expect.IsEmpty() {
			return fmt.Errorf("test '%s' has no assertion fences", current.Name)
		}
		tests = append(tests, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &TestCase{Name: strings.TrimPrefix(heading, "Test: ")}
			hasInput = false

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			line := lineNumber(n, source)
			if current == nil {
				if language != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, language)
				}
				return ast.WalkContinue, nil
			}

			content := fenceContent(n, source)
			switch language {
			case fenceFrog, fenceFrogNoOpt:
				if hasInput {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", line, current.Name)
				}
				hasInput = true
				current.Source = content
				if language == fenceFrogNoOpt {
					off := false
					current.Optimize = &off
				}
			case fenceDisasm:
				current.Expect.Disasm = strings.TrimRight(content, "\n")
			case fenceContains:
				for _, l := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
					if l = strings.TrimSpace(l); l != "" {
						current.Expect.Contains = append(current.Expect.Contains, l)
					}
				}
			case fenceCompileError:
				current.Expect.Error = strings.TrimSpace(content)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return tests, nil
}

// nodeText extracts plain text content from a markdown node
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineNumber returns the 1-based line of the node's first line
func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	if start > len(source) {
		start = len(source)
	}
	return bytes.Count(source[:start], []byte("\n")) + 1
}
