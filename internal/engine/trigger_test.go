package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/errors"
)

func TestParseTrigger_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		condition string
	}{
		{name: "empty", condition: ""},
		{name: "whitespace only", condition: "   "},
		{name: "unknown term", condition: "wand == elder"},
		{name: "empty evidence id", condition: "evidence:"},
		{name: "unknown operator", condition: "trust != 50"},
		{name: "missing number", condition: "trust >="},
		{name: "non-numeric comparison", condition: "trust >= lots"},
		{name: "trailing conjunction", condition: "trust >= 50 AND"},
		{name: "lowercase conjunction", condition: "trust >= 50 and evidence:wand"},
		{name: "two terms without conjunction", condition: "evidence:wand evidence:cloak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.ParseTrigger(tt.condition)
			require.Error(t, err)
			assert.True(t, errors.Is(err, engine.ErrMalformedTrigger))
		})
	}
}

func TestTriggerCondition_Eval(t *testing.T) {
	t.Parallel()

	evidence := map[string]bool{"torn-sleeve": true, "floo-records": true}

	tests := []struct {
		name      string
		condition string
		trust     int
		want      bool
	}{
		{name: "evidence present", condition: "evidence:torn-sleeve", trust: 0, want: true},
		{name: "evidence absent", condition: "evidence:wand", trust: 100, want: false},
		{name: "trust greater", condition: "trust > 50", trust: 51, want: true},
		{name: "trust greater boundary", condition: "trust > 50", trust: 50, want: false},
		{name: "trust less", condition: "trust < 20", trust: 19, want: true},
		{name: "trust at least boundary", condition: "trust >= 60", trust: 60, want: true},
		{name: "trust at most boundary", condition: "trust <= 60", trust: 60, want: true},
		{name: "trust equals", condition: "trust == 42", trust: 42, want: true},
		{name: "trust equals misses", condition: "trust == 42", trust: 43, want: false},
		{name: "and both hold", condition: "evidence:torn-sleeve AND trust >= 60", trust: 60, want: true},
		{name: "and one fails", condition: "evidence:torn-sleeve AND trust >= 60", trust: 59, want: false},
		{name: "or rescues", condition: "evidence:wand OR trust >= 60", trust: 75, want: true},
		{name: "or both fail", condition: "evidence:wand OR trust >= 60", trust: 10, want: false},
		{
			// Left fold, no precedence: (true OR false) AND false == false.
			name:      "left fold over and",
			condition: "evidence:torn-sleeve OR evidence:wand AND trust >= 90",
			trust:     10,
			want:      false,
		},
		{
			// (false AND true) OR true == true.
			name:      "left fold over or",
			condition: "evidence:wand AND evidence:floo-records OR trust >= 10",
			trust:     10,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cond, err := engine.ParseTrigger(tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.Eval(evidence, tt.trust))
			assert.Equal(t, tt.condition, cond.String())
		})
	}
}

func TestTriggerCondition_EvidenceRefs(t *testing.T) {
	t.Parallel()

	cond, err := engine.ParseTrigger("evidence:torn-sleeve AND trust >= 60 OR evidence:floo-records")
	require.NoError(t, err)
	assert.Equal(t, []string{"torn-sleeve", "floo-records"}, cond.EvidenceRefs())
}
