package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digikeyInvoice = `DIGI-KEY ELECTRONICS
701 Brooks Ave South, Thief River Falls, MN

PO Acknowledgement: 12345678
WEB ORDER ID: 987654
Order Date: 20-SEP-2025

1 4 4 0 PART: 296-1234-ND
MFG : Texas Instruments / SN74HC595N
COO : CHINA ECCN: EAR99 HTSUS: 8542.39.0001
DESC: IC SHIFT REGISTER 8BIT 16DIP 0.52500 2.10
2 10 10 0 PART: CF14JT10K0CT-ND
MFG : Stackpole Electronics / CF14JT10K0
COO : TAIWAN
DESC: RES 10K OHM 5% 1/4W AXIAL 0.01000 0.10

Sales Amount 2.20
Shipping charges applied
7.99
Sales Tax 0.66
Total 10.85`

func TestDigiKeyDetect(t *testing.T) {
	ex := DigiKey{}
	assert.True(t, ex.Detect("DIGI-KEY ELECTRONICS"))
	assert.True(t, ex.Detect("order from www.digikey.com today"))
	assert.False(t, ex.Detect("McMaster-Carr"))
}

func TestDigiKeyParseOrder(t *testing.T) {
	of := DigiKey{}.ParseOrder(digikeyInvoice)

	assert.Equal(t, "12345678", of.Invoice)
	assert.Equal(t, "987654", of.PurchaseOrder)
	assert.Equal(t, "20-SEP-2025", of.OrderDate)

	require.NotNil(t, of.Merchandise)
	assert.Equal(t, "2.2", of.Merchandise.String())
	require.NotNil(t, of.Shipping)
	assert.Equal(t, "7.99", of.Shipping.String())
	require.NotNil(t, of.Tax)
	assert.Equal(t, "0.66", of.Tax.String())
	require.NotNil(t, of.Total)
	assert.Equal(t, "10.85", of.Total.String())
}

func TestDigiKeyParseLineItems(t *testing.T) {
	items := DigiKey{}.ParseLineItems(digikeyInvoice)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "296-1234-ND", first.SKU)
	require.NotNil(t, first.Line)
	assert.Equal(t, int64(1), *first.Line)
	require.NotNil(t, first.Ordered)
	assert.Equal(t, int64(4), *first.Ordered)
	require.NotNil(t, first.Shipped)
	assert.Equal(t, int64(4), *first.Shipped)
	require.NotNil(t, first.Balance)
	assert.Equal(t, int64(0), *first.Balance)
	assert.Equal(t, "Texas Instruments", first.Manufacturer)
	assert.Equal(t, "SN74HC595N", first.MfgPartNumber)
	assert.Equal(t, "CHINA", first.CountryOfOrigin)
	assert.Equal(t, "IC SHIFT REGISTER 8BIT 16DIP", first.Description)
	require.NotNil(t, first.UnitPrice)
	assert.Equal(t, "0.525", first.UnitPrice.String())
	require.NotNil(t, first.LineTotal)
	assert.Equal(t, "2.1", first.LineTotal.String())

	second := items[1]
	assert.Equal(t, "CF14JT10K0CT-ND", second.SKU)
	assert.Equal(t, "TAIWAN", second.CountryOfOrigin)
	assert.Equal(t, "RES 10K OHM 5% 1/4W AXIAL", second.Description)
	require.NotNil(t, second.UnitPrice)
	assert.Equal(t, "0.01", second.UnitPrice.String())
}

func TestDigiKeyRepeatedBlocksDeduped(t *testing.T) {
	doubled := `DIGI-KEY ELECTRONICS
PO Acknowledgement: 12345678

1 4 4 0 PART: 296-1234-ND
MFG : Texas Instruments / SN74HC595N
COO : CHINA
DESC: IC SHIFT REGISTER 8BIT 16DIP 0.52500 2.10
1 4 4 0 PART: 296-1234-ND
MFG : Texas Instruments / SN74HC595N
COO : CHINA
DESC: IC SHIFT REGISTER 8BIT 16DIP 0.52500 2.10

Sales Amount 2.10`

	items := DigiKey{}.ParseLineItems(doubled)
	require.Len(t, items, 1)
	assert.Equal(t, "296-1234-ND", items[0].SKU)
	require.NotNil(t, items[0].Shipped)
	assert.Equal(t, int64(4), *items[0].Shipped)
}
