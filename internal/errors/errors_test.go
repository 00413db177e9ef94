package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	base := fmt.Errorf("file truncated")

	err := New(base).
		Component("exifdata").
		Category(CategoryMetadataParse).
		Context("path", "photos/a.jpg").
		Build()
	require.Error(t, err)

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, "file truncated", ee.Error())
	assert.Equal(t, "exifdata", ee.GetComponent())
	assert.Equal(t, string(CategoryMetadataParse), ee.GetCategory())
	assert.Equal(t, "photos/a.jpg", ee.GetContext()["path"])
	assert.False(t, ee.Timestamp.IsZero())

	// Wrapping is preserved for the standard error tree.
	assert.True(t, Is(err, base))
	assert.Equal(t, base, Unwrap(err))
}

func TestBuildNilError(t *testing.T) {
	assert.Nil(t, New(nil).Component("x").Build())
}

func TestDefaultsWhenUnset(t *testing.T) {
	err := Newf("boom").Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, string(CategoryGeneric), ee.GetCategory())
	assert.Nil(t, ee.GetContext())
}

func TestGetContextReturnsCopy(t *testing.T) {
	err := Newf("boom").Context("k", "v").Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))

	ctx := ee.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", ee.GetContext()["k"])
}

func TestIsMatchesByCategory(t *testing.T) {
	a := Newf("first").Category(CategoryDatabase).Build()
	b := Newf("second").Category(CategoryDatabase).Build()
	c := Newf("third").Category(CategoryNetwork).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}
