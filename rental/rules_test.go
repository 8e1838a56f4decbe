package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesValue(t *testing.T) {
	v, err := Rules{"No smoking", "No pets"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["No smoking","No pets"]`, v)

	v, err = Rules(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestRulesScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Rules
	}{
		{"json", `["No smoking","No pets"]`, Rules{"No smoking", "No pets"}},
		{"json bytes", []byte(`["a, b"]`), Rules{"a, b"}},
		{"json empty", "[]", Rules{}},
		{"legacy", "No smoking, No pets", Rules{"No smoking", " No pets"}},
		{"legacy empty", "", Rules{""}},
		{"legacy bracket", "[Note] a, b", Rules{"[Note] a", " b"}},
		{"legacy unterminated", "[not json", Rules{"[not json"}},
		{"null", nil, Rules{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Rules
			require.NoError(t, r.Scan(tt.src))
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestRulesScanRejectsOtherTypes(t *testing.T) {
	var r Rules
	assert.Error(t, r.Scan(42))
}

func TestLegacyRulesCodec(t *testing.T) {
	assert.Equal(t, "No smoking, No pets", JoinRules([]string{"No smoking", "No pets"}))
	assert.Equal(t, "", JoinRules(nil))
	assert.Equal(t, Rules{""}, SplitRules(JoinRules(nil)))
}
