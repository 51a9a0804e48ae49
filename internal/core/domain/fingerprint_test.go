package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	inputs := []string{"", "v1", "the same content", "line\nbreaks\nand\ttabs"}
	for _, s := range inputs {
		assert.Equal(t, Fingerprint(s), Fingerprint(s), "input %q", s)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	pairs := [][2]string{
		{"v1", "v2"},
		{"", " "},
		{"content", "content "},
		{"Plan: hire", "Plan: fire"},
	}
	for _, p := range pairs {
		assert.NotEqual(t, Fingerprint(p[0]), Fingerprint(p[1]), "inputs %q vs %q", p[0], p[1])
	}
}

func TestFingerprintFormat(t *testing.T) {
	// 128-bit digest encoded as hex.
	fp := Fingerprint("anything")
	assert.Len(t, fp, 32)
	assert.Regexp(t, "^[0-9a-f]+$", fp)
}
