package normalize_test

import (
	"testing"

	"alcyxob/overload/internal/normalize"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Supino", "supino"},
		{"  Supino   Inclinado ", "supino inclinado"},
		{"Elevação Lateral", "elevacao lateral"},
		{"PUSH\tA", "push a"},
		{"Crème  Brûlée", "creme brulee"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.Name(tt.raw), "raw=%q", tt.raw)
	}
}

func TestName_Idempotent(t *testing.T) {
	for _, raw := range []string{"Élan  Vital", " push a ", "Agachamento Búlgaro", "ñandú"} {
		once := normalize.Name(raw)
		assert.Equal(t, once, normalize.Name(once))
	}
}

func TestEqual_IgnoresCaseWhitespaceAndAccents(t *testing.T) {
	assert.True(t, normalize.Equal("Push A", "push a "))
	assert.True(t, normalize.Equal("Remada   Curvada", "remada curvada"))
	assert.True(t, normalize.Equal("Flexão", "FLEXAO"))
	assert.False(t, normalize.Equal("Push A", "Push B"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Supino Reto", normalize.Display("  Supino \n Reto "))
	assert.Equal(t, "", normalize.Display(" \t "))
}
