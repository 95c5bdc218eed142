package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestPhase(t *testing.T) {
	var out strings.Builder
	tr := New(true, nil, &out)

	tr.Phase("lex", "%d tokens", 12)
	tr.Failure("parse", errors.New("boom"))

	be.Equal(t, out.String(), "[TRACE] PHASE lex 12 tokens\n[TRACE] FAIL parse boom\n")
}

func TestFilters(t *testing.T) {
	tests := []struct {
		filters []string
		phase   string
		want    bool
	}{
		{nil, "generate", true},
		{[]string{"gen*"}, "generate", true},
		{[]string{"gen*"}, "parse", false},
		{[]string{"lex", "parse"}, "parse", true},
		{[]string{"[bad"}, "parse", false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.filters, ",")+"/"+tt.phase, func(t *testing.T) {
			var out strings.Builder
			New(true, tt.filters, &out).Phase(tt.phase, "ok")
			be.Equal(t, out.Len() > 0, tt.want)
		})
	}
}

func TestDisabledAndNil(t *testing.T) {
	var out strings.Builder
	New(false, nil, &out).Phase("lex", "ignored")
	be.Equal(t, out.String(), "")

	var tr *Tracer
	be.True(t, !tr.IsEnabled())
	tr.Phase("lex", "ignored")
	tr.Failure("lex", errors.New("ignored"))
}
