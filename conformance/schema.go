package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single test within a suite
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"`     // bool or string
	Optimize    *bool       `yaml:"optimize,omitempty"` // nil means optimize
	Source      string      `yaml:"source"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines what result is expected from a test
type Expectation struct {
	Disasm   string   `yaml:"disasm,omitempty"`   // exact listing, header optional
	Contains []string `yaml:"contains,omitempty"` // listing lines that must appear
	Error    string   `yaml:"error,omitempty"`    // substring of the compile error
	Kind     string   `yaml:"kind,omitempty"`     // LexError, ParseError, CodegenError
}

// IsEmpty reports whether no expectation was given
func (e Expectation) IsEmpty() bool {
	return e.Disasm == "" && len(e.Contains) == 0 && e.Error == "" && e.Kind == ""
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}

// OptimizeEnabled reports whether the optimizer runs for this test
func (tc *TestCase) OptimizeEnabled() bool {
	return tc.Optimize == nil || *tc.Optimize
}
