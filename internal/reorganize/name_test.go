package reorganize

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Reject(t *testing.T) {
	ok := []string{"Red", "U12 Girls", "a.jpg", "Équipe", ".hidden"}
	for _, v := range ok {
		got, err := segment("team", v, PolicyReject)
		require.NoError(t, err, v)
		assert.Equal(t, v, got)
	}

	bad := []string{".", "..", "a/b", "x\x00y"}
	for _, v := range bad {
		_, err := segment("team", v, PolicyReject)
		assert.True(t, errors.Is(err, ErrInvalidName), "%q should be rejected", v)
	}
}

func TestSegment_Sanitize(t *testing.T) {
	cases := map[string]string{
		"a/b":   "a_b",
		`a\b`:   "a_b",
		"..":    "_",
		".":     "_",
		"x\x00": "x_",
		// decomposed e + combining acute becomes the composed form
		"Equipe\u0301": "Equip\u00e9",
	}
	for in, want := range cases {
		got, err := segment("team", in, PolicySanitize)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestSourcePath(t *testing.T) {
	got, err := sourcePath("/photos", "sub/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/photos", "sub", "a.jpg"), got)

	for _, v := range []string{"..", "../a.jpg", "/etc/passwd", "a\x00.jpg"} {
		_, err := sourcePath("/photos", v)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", v)
	}
}

func TestSegment_EmptyPassesThrough(t *testing.T) {
	got, err := segment("team", "", PolicyReject)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Sanitize")
	require.NoError(t, err)
	assert.Equal(t, PolicySanitize, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParsePolicy("escape")
	assert.Error(t, err)
}
