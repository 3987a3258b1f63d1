package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("gap", "3f2b8c1e-0d4a-4f6b-9a8e-1c2d3e4f5a6b"))
	assert.NoError(t, ValidateID("vendor", "v1"))
	assert.Error(t, ValidateID("gap", ""))
	assert.Error(t, ValidateID("gap", "-leading"))
	assert.Error(t, ValidateID("gap", "a/b"))
	assert.EqualError(t, ValidateID("vendor", "x y"), "invalid vendor id format")
}

func TestValidateOrgID(t *testing.T) {
	assert.NoError(t, ValidateOrgID("org_1-a"))
	assert.Error(t, ValidateOrgID(""))
	assert.Error(t, ValidateOrgID("org 1"))
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseLimit(" 25 ")
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = ParseLimit("-1")
	assert.Error(t, err)
	_, err = ParseLimit("ten")
	assert.Error(t, err)
}

func TestParseMinScore(t *testing.T) {
	v, err := ParseMinScore("80.5")
	require.NoError(t, err)
	assert.Equal(t, 80.5, v)

	v, err = ParseMinScore("")
	require.NoError(t, err)
	assert.Zero(t, v)

	for _, bad := range []string{"101", "-3", "NaN", "high"} {
		_, err := ParseMinScore(bad)
		assert.Error(t, err, bad)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello\tworld", SanitizeString("  hel\x00lo\tworld\x07 "))
}
