package constants

import "strings"

// Vendor identifies one supported receipt source.
type Vendor string

// Stable values (store these exact strings in DB and part keys).
const (
	VendorMcMaster      Vendor = "mcmaster"
	VendorDigiKey       Vendor = "digikey"
	VendorArduino       Vendor = "arduino"
	VendorStepperOnline Vendor = "stepperonline"
	VendorSendCutSend   Vendor = "sendcutsend"
	VendorUnknown       Vendor = "unknown"
)

var allVendors = []Vendor{
	VendorMcMaster,
	VendorDigiKey,
	VendorArduino,
	VendorStepperOnline,
	VendorSendCutSend,
}

// AsStringSlice returns the supported vendor ids in declaration order.
func AsStringSlice() []string {
	result := make([]string, len(allVendors))
	for i, v := range allVendors {
		result[i] = string(v)
	}
	return result
}

// Canonicalize maps free-form vendor text onto a known Vendor.
func Canonicalize(input string) (Vendor, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return VendorUnknown, false
	}
	for _, v := range allVendors {
		if normalized == string(v) {
			return v, true
		}
	}
	return VendorUnknown, false
}
