package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	v, ok := Canonicalize("  McMaster ")
	assert.True(t, ok)
	assert.Equal(t, VendorMcMaster, v)

	v, ok = Canonicalize("DIGIKEY")
	assert.True(t, ok)
	assert.Equal(t, VendorDigiKey, v)

	v, ok = Canonicalize("amazon")
	assert.False(t, ok)
	assert.Equal(t, VendorUnknown, v)

	_, ok = Canonicalize("")
	assert.False(t, ok)
}

func TestAsStringSlice(t *testing.T) {
	ids := AsStringSlice()
	assert.Equal(t, []string{"mcmaster", "digikey", "arduino", "stepperonline", "sendcutsend"}, ids)
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "pdf", NormalizeExt("pdf"))
	assert.Equal(t, "txt", NormalizeExt(".txt"))
}
