package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNorm(t *testing.T) {
	assert.Equal(t, "alloy steel screw", Norm("  Alloy   Steel\tScrew "))
	assert.Equal(t, "", Norm("   "))
	assert.Equal(t, "a b", Norm("A\n B"))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	h, err := HashFile(path)
	require.NoError(t, err)
	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", h)

	_, err = HashFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestOrderUIDDeterministic(t *testing.T) {
	a := OrderUID("mcmaster", "55152414", "abc123")
	b := OrderUID("mcmaster", "55152414", "abc123")
	assert.Equal(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)

	// Cosmetic casing and spacing must not change identity.
	assert.Equal(t, a, OrderUID("McMaster", "  55152414 ", "abc123"))

	assert.NotEqual(t, a, OrderUID("mcmaster", "55152414", "def456"))
	assert.NotEqual(t, a, OrderUID("digikey", "55152414", "abc123"))

	// Pinned value: order ids are persisted, so the namespace must never
	// drift across releases.
	assert.Equal(t, "faa1fce8-d35d-5fd5-ae58-52499d8bb21a", a)
}

func TestLineItemUIDSensitivity(t *testing.T) {
	base := LineItemUID("mcmaster", "55152414", "abc123", 1, "91290A115", "Alloy Steel Screw", "9.55", "1")

	assert.Equal(t, base,
		LineItemUID("mcmaster", "55152414", "abc123", 1, "91290a115", "Alloy  Steel Screw", "9.55", "1"))

	assert.NotEqual(t, base,
		LineItemUID("mcmaster", "55152414", "abc123", 2, "91290A115", "Alloy Steel Screw", "9.55", "1"))
	assert.NotEqual(t, base,
		LineItemUID("mcmaster", "55152414", "abc123", 1, "91290A115", "Alloy Steel Screw", "9.99", "1"))
	assert.NotEqual(t, base,
		LineItemUID("mcmaster", "55152414", "abc123", 1, "91290A115", "Alloy Steel Screw", "9.55", "2"))
}

func TestPartKeyTiers(t *testing.T) {
	assert.Equal(t, "mcmaster:91290A115", PartKey("mcmaster", "91290A115", "", "screw"))
	assert.Equal(t, "digikey:SN74HC595N", PartKey("digikey", "", "SN74HC595N", "shift register"))

	k := PartKey("sendcutsend", "", "", "5052 Aluminum bracket")
	assert.Regexp(t, `^sendcutsend:d[0-9a-f]{12}$`, k)

	// Description fallback is stable and normalization-insensitive.
	assert.Equal(t, k, PartKey("sendcutsend", "", "", "5052  ALUMINUM   Bracket"))
	assert.NotEqual(t, k, PartKey("sendcutsend", "", "", "6061 Aluminum bracket"))
}
