package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studio-inventory/constants"
)

func TestRegistryPick(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name string
		text string
		want constants.Vendor
	}{
		{"mcmaster", mcmasterInvoice, constants.VendorMcMaster},
		{"digikey", digikeyInvoice, constants.VendorDigiKey},
		{"arduino", arduinoInvoice, constants.VendorArduino},
		{"stepperonline", stepperOnlineInvoice, constants.VendorStepperOnline},
		{"sendcutsend", sendCutSendInvoice, constants.VendorSendCutSend},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := reg.Pick(tc.text)
			require.NotNil(t, ex)
			assert.Equal(t, tc.want, ex.Vendor())
		})
	}
}

func TestRegistryPickNoMatch(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, reg.Pick("a grocery receipt from the corner store"))
	assert.Nil(t, reg.Pick(""))
}

type panickyExtractor struct{ McMaster }

func (panickyExtractor) Detect(string) bool { panic("bad page text") }

func TestDetectsRecoversPanic(t *testing.T) {
	assert.False(t, detects(panickyExtractor{}, "anything"))
}
