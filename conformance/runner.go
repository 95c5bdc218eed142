package conformance

import (
	"fmt"
	"strings"

	"frogc/bytecode"
	"frogc/compiler"
	"frogc/diag"
	"frogc/objfile"
)

const disasmHeader = "=== CODE (disasm) ==="

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Listing    string // disassembly of the compiled module, if any
	Error      error
}

// Runner executes conformance tests
type Runner struct{}

// NewRunner creates a new test runner
func NewRunner() *Runner {
	return &Runner{}
}

// Run compiles a single test case and checks its expectation. Every module
// that compiles is also written and read back, and must disassemble the same.
func (r *Runner) Run(test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{
			Test:       test,
			Skipped:    true,
			SkipReason: reason,
		}
	}

	if test.Test.Expect.IsEmpty() {
		return TestResult{Test: test, Error: fmt.Errorf("no expectation specified")}
	}

	res, compileErr := compiler.Compile(test.Test.Source, compiler.Options{
		DisableOptimizer: !test.Test.OptimizeEnabled(),
	})

	result := TestResult{Test: test}
	if compileErr == nil {
		result.Listing = bytecode.DisassembleString(res.Module)
		if err := checkRoundTrip(res.Module, result.Listing); err != nil {
			result.Error = err
			return result
		}
	}

	result.Error = checkExpectation(test.Test.Expect, result.Listing, compileErr)
	result.Passed = result.Error == nil
	return result
}

// RunAll executes all loaded tests
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, test := range tests {
		results[i] = r.Run(test)
	}
	return results
}

// SummaryStats computes statistics from test results
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats generates statistics from test results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// checkRoundTrip serializes m, reads it back and compares listings
func checkRoundTrip(m *bytecode.Module, listing string) error {
	data, err := objfile.Marshal(m)
	if err != nil {
		return fmt.Errorf("write module: %w", err)
	}
	back, err := objfile.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("read module: %w", err)
	}
	if got := bytecode.DisassembleString(back); got != listing {
		return fmt.Errorf("listing changed after round trip:\n%s", got)
	}
	return nil
}

// checkExpectation checks if the outcome matches the expected one
func checkExpectation(expect Expectation, listing string, compileErr error) error {
	if expect.Error != "" || expect.Kind != "" {
		if compileErr == nil {
			return fmt.Errorf("expected error %q, compiled to:\n%s", expect.Error, listing)
		}
		if !strings.Contains(compileErr.Error(), expect.Error) {
			return fmt.Errorf("expected error containing %q, got %q", expect.Error, compileErr.Error())
		}
		if expect.Kind != "" {
			kind, ok := diag.KindOf(compileErr)
			if !ok || kind.String() != expect.Kind {
				return fmt.Errorf("expected %s, got %v", expect.Kind, compileErr)
			}
		}
		return nil
	}

	if compileErr != nil {
		return fmt.Errorf("unexpected error: %w", compileErr)
	}

	if expect.Disasm != "" {
		want := normalizeListing(expect.Disasm)
		if got := normalizeListing(listing); got != want {
			return fmt.Errorf("listing mismatch\nwant:\n%s\ngot:\n%s", want, got)
		}
	}

	lines := strings.Split(listing, "\n")
	for _, want := range expect.Contains {
		if !containsLine(lines, want) {
			return fmt.Errorf("listing has no line containing %q:\n%s", want, listing)
		}
	}
	return nil
}

// normalizeListing drops the header and surrounding blank lines
func normalizeListing(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, disasmHeader)
	return strings.Trim(s, "\n")
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}
