package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestPath is the directory holding the conformance suites
const TestPath = "testdata"

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests loads every suite under TestPath
func LoadAllTests() ([]LoadedTest, error) {
	return LoadDir(TestPath)
}

// LoadDir walks dir and loads all YAML and Markdown suites. A file that
// fails to load fails the whole walk.
func LoadDir(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		var suite *TestSuite
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			suite, err = loadTestFile(path)
		case ".md":
			suite, err = loadMarkdownFile(path)
		default:
			return nil
		}

		relPath, _ := filepath.Rel(dir, path)
		relPath = filepath.ToSlash(relPath)
		if err != nil {
			return fmt.Errorf("%s: %w", relPath, err)
		}

		for _, test := range suite.Tests {
			loaded = append(loaded, LoadedTest{
				File:  relPath,
				Suite: *suite,
				Test:  test,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loaded, nil
}

// loadTestFile parses a single YAML suite
func loadTestFile(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// loadMarkdownFile parses a single Markdown suite; the file name is the
// suite name
func loadMarkdownFile(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tests, err := ExtractTestCases(string(data))
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &TestSuite{Name: name[:len(name)-len(filepath.Ext(name))], Tests: tests}, nil
}
