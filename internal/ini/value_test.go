package ini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		in   string
		kind ValueKind
		want any
	}{
		{"True", KindBool, true},
		{"false", KindBool, false},
		{"16", KindInt, int64(16)},
		{"-1", KindInt, int64(-1)},
		{"1.5", KindFloat, 1.5},
		{"0.85", KindFloat, 0.85},
		{"NaN", KindText, "NaN"},
		{"Inf", KindText, "Inf"},
		{"4096x4096", KindText, "4096x4096"},
		{"", KindText, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Interpret(tt.in)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.want, got.Any())
		})
	}
}
