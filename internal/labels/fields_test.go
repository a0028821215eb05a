package labels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/studio-inventory/constants"
)

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "O-Ring, Oil-Resistant Buna-N",
		CleanDescription("O-Ring, Oil-Resistant Buna-N, Packs of 10"))
	assert.Equal(t, "Dowel Pin, 3mm Dia",
		CleanDescription("Dowel Pin, 3mm Dia, Each"))
	assert.Equal(t, "Shim Stock", CleanDescription("  Shim Stock  "))
	assert.Equal(t, "", CleanDescription(""))
}

func TestTightenUnits(t *testing.T) {
	assert.Equal(t, "4.00in x 2.50in", tightenUnits("4.00 in x 2.50 in"))
	assert.Equal(t, "24mm OD", tightenUnits("24 mm outer diameter"))
	assert.Equal(t, "5mm ID", tightenUnits("5 mm inner diameter"))
	assert.Equal(t, "3mm Dia", tightenUnits("3 mm diameter"))
	assert.Equal(t, "M5 Thread", tightenUnits("M5 thread size"))
}

func TestFieldsCatalogSpecs(t *testing.T) {
	descClean, line1, line2 := Fields(constants.VendorMcMaster, "91290A115",
		"Alloy Steel Socket Head Screw, M5 x 0.8mm Thread, 25mm Long, Packs of 10", "")

	assert.Equal(t, "Alloy Steel Socket Head Screw, M5 x 0.8mm Thread, 25mm Long", descClean)
	assert.Equal(t, "Alloy Steel Socket Head Screw", line1)
	assert.Equal(t, "M5 x 0.8mm Thread - 25mm Long", line2)
}

func TestFieldsSkipsPackChunks(t *testing.T) {
	_, _, line2 := Fields(constants.VendorMcMaster, "9452K177",
		"O-Ring, 5mm ID, pack of 100", "")
	assert.Equal(t, "5mm ID", line2)
}

func TestFieldsCADFilename(t *testing.T) {
	desc := "5052 Aluminum (.125\")\n4.00 in x 2.50 in\nbracket_v2.dxf"
	_, line1, line2 := Fields(constants.VendorSendCutSend, "bracket_v2.dxf", desc, "")

	assert.Equal(t, "bracket_v2.dxf", line1)
	assert.Equal(t, "5052 Aluminum (.125\") - 4.00in x 2.50in", line2)
}

func TestFieldsEmptyDescriptionFallsBack(t *testing.T) {
	_, line1, line2 := Fields(constants.VendorDigiKey, "296-1234-ND", "", "SN74HC595N")
	assert.Equal(t, "SN74HC595N", line1)
	assert.Empty(t, line2)

	_, line1, _ = Fields(constants.VendorDigiKey, "296-1234-ND", "", "")
	assert.Equal(t, "296-1234-ND", line1)
}

func TestFieldsSpecFallsBackToPartNumber(t *testing.T) {
	_, _, line2 := Fields(constants.VendorDigiKey, "296-1234-ND", "Shift Register", "SN74HC595N")
	assert.Equal(t, "SN74HC595N", line2)
}

func TestPurchaseURL(t *testing.T) {
	assert.Equal(t, "https://www.mcmaster.com/#91290A115",
		PurchaseURL(constants.VendorMcMaster, "91290A115"))
	assert.Equal(t, "https://www.digikey.com/en/products?keywords=296-1234-ND",
		PurchaseURL(constants.VendorDigiKey, "296-1234-ND"))
	assert.Contains(t,
		PurchaseURL(constants.VendorArduino, "ABX00087"), "store-usa.arduino.cc")
	assert.Empty(t, PurchaseURL(constants.VendorSendCutSend, "bracket_v2.dxf"))
	assert.Empty(t, PurchaseURL(constants.VendorMcMaster, ""))
}

func TestAirtableURL(t *testing.T) {
	tmpl := "https://airtable.com/appX/tblY?pk={part_key}&v={vendor}&s={sku}"
	got := AirtableURL(tmpl, "mcmaster:91290A115", constants.VendorMcMaster, "91290A115")
	assert.Equal(t, "https://airtable.com/appX/tblY?pk=mcmaster:91290A115&v=mcmaster&s=91290A115", got)
	assert.Empty(t, AirtableURL("", "k", constants.VendorMcMaster, "s"))
}

func TestPickQRURL(t *testing.T) {
	assert.Equal(t, "P", PickQRURL("purchase", "P", "A"))
	assert.Equal(t, "A", PickQRURL("airtable", "P", "A"))
	assert.Equal(t, "P", PickQRURL("airtable", "P", ""))
	assert.Equal(t, "A", PickQRURL("purchase", "", "A"))
	assert.Empty(t, PickQRURL("purchase", "", ""))
}

func TestShort(t *testing.T) {
	got := Short("Alloy Steel Socket Head Screw", "M5 x 0.8mm Thread - 25mm Long", "", "")
	assert.LessOrEqual(t, len(got), ShortMaxLen)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.True(t, strings.HasPrefix(got, "Alloy Steel Socket Head Screw (M5"))

	assert.Equal(t, "O-Ring (5mm ID)", Short("O-Ring", "5mm ID", "", ""))
	assert.Equal(t, "Nema 17 Motor 17HS19", Short("Nema 17 Motor 17HS19", "17hs19", "", ""),
		"spec already contained in the name is not repeated")
	assert.Equal(t, "SN74HC595N", Short("", "", "296-1234-ND", "SN74HC595N"))
	assert.Equal(t, "296-1234-ND", Short("", "", "296-1234-ND", ""))
}
