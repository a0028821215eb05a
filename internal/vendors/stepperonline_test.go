package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stepperOnlineInvoice = `OMC Corporation Limited
STEPPERONLINE
Date Added: 11/02/2025
Order ID: 1234567

Product Name Model Price Total ex. tax
2 x Nema 17 Stepper Motor
Ships from: CN warehouse
Bipolar 59Ncm 17HS19-2004S1 $13.99 $27.98
1 x Stepper Motor Driver
DM542T $23.50 $23.50
Sub-Total: $51.48
USPS Ground: $8.50
Packing Fee: $1.00
Total: $60.98`

func TestStepperOnlineDetect(t *testing.T) {
	ex := StepperOnline{}
	assert.True(t, ex.Detect("OMC Corporation Limited"))
	assert.True(t, ex.Detect("order confirmation stepperonline.com"))
	assert.False(t, ex.Detect("Nema 17 datasheet"))
}

func TestStepperOnlineParseOrder(t *testing.T) {
	of := StepperOnline{}.ParseOrder(stepperOnlineInvoice)

	assert.Equal(t, "1234567", of.Invoice)
	assert.Equal(t, "1234567", of.PurchaseOrder)
	assert.Equal(t, "11/02/2025", of.OrderDate)

	require.NotNil(t, of.Merchandise)
	assert.Equal(t, "51.48", of.Merchandise.String())
	require.NotNil(t, of.Shipping)
	assert.Equal(t, "9.5", of.Shipping.String())
	require.NotNil(t, of.Total)
	assert.Equal(t, "60.98", of.Total.String())
}

func TestStepperOnlineShippingAbsent(t *testing.T) {
	of := StepperOnline{}.ParseOrder("Order ID: 55\nSub-Total: $10.00\nTotal: $10.00")
	assert.Nil(t, of.Shipping)
}

func TestStepperOnlineParseLineItems(t *testing.T) {
	items := StepperOnline{}.ParseLineItems(stepperOnlineInvoice)
	require.Len(t, items, 2)

	motor := items[0]
	assert.Equal(t, "17HS19-2004S1", motor.SKU)
	assert.Equal(t, "Nema 17 Stepper Motor Bipolar 59Ncm", motor.Description)
	assert.Equal(t, "StepperOnline", motor.Manufacturer)
	assert.Equal(t, "17HS19-2004S1", motor.MfgPartNumber)
	assert.Equal(t, "CN warehouse", motor.CountryOfOrigin)
	require.NotNil(t, motor.Ordered)
	assert.Equal(t, int64(2), *motor.Ordered)
	require.NotNil(t, motor.UnitPrice)
	assert.Equal(t, "13.99", motor.UnitPrice.String())
	require.NotNil(t, motor.LineTotal)
	assert.Equal(t, "27.98", motor.LineTotal.String())

	driver := items[1]
	assert.Equal(t, "DM542T", driver.SKU)
	assert.Equal(t, "Stepper Motor Driver", driver.Description)
	assert.Empty(t, driver.CountryOfOrigin)
	require.NotNil(t, driver.Ordered)
	assert.Equal(t, int64(1), *driver.Ordered)
	require.NotNil(t, driver.UnitPrice)
	assert.Equal(t, "23.5", driver.UnitPrice.String())
}

func TestStepperOnlineRepeatedRowsDeduped(t *testing.T) {
	text := `STEPPERONLINE
Product Name Model Price Total ex. tax
1 x Flexible Coupling
SC5x8 $4.99 $4.99
1 x Flexible Coupling
SC5x8 $4.99 $4.99
Sub-Total: $4.99`
	items := StepperOnline{}.ParseLineItems(text)
	require.Len(t, items, 1)
	assert.Equal(t, "SC5x8", items[0].SKU)
}
