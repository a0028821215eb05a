// Package labels derives the printable label text and QR link for a part:
// a display name, a compact spec line, a short one-liner for small stock,
// and the URL the QR code encodes.
package labels

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/studio-inventory/constants"
)

var (
	packTrailRe = regexp.MustCompile(`(?i)\s*,?\s*(packs?|pack|package|pkg|bag|boxes?)\s+of\s+\d+\s*$`)
	eachTrailRe = regexp.MustCompile(`(?i)\s*,?\s*each\s*$`)

	unitGapRe   = regexp.MustCompile(`(?i)(\d)\s+(mm|cm|m|in)\b`)
	outerDiaRe  = regexp.MustCompile(`(?i)\bouter diameter\b`)
	innerDiaRe  = regexp.MustCompile(`(?i)\binner diameter\b`)
	diameterRe  = regexp.MustCompile(`(?i)\bdiameter\b`)
	threadSzRe  = regexp.MustCompile(`(?i)\bthread size\b`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
	packWordRe  = regexp.MustCompile(`(?i)\b(pack|packs|pkg|package)\b`)
	cadFileRe   = regexp.MustCompile(`(?i)\.(step|stp|dxf|dwg|iges|igs|sldprt|sldasm|pdf)\b`)
	threadDimRe = regexp.MustCompile(`(\d+\s*/\s*\d+\s*"?\s*-\s*\d+)`)
	hasDigitRe  = regexp.MustCompile(`\d`)
)

// spec words that qualify a comma chunk for the spec line.
var keyWords = []string{
	"OD", "ID", "Thread", "Long", "Length", "Wide", "Width",
	"Thick", "Thickness", "Gauge", "Size", "Pitch", "Dia",
}

// ShortMaxLen is the character budget of the compact label line.
const ShortMaxLen = 42

// CleanDescription strips pack-size and ", Each" suffixes from a raw
// catalog description.
func CleanDescription(desc string) string {
	s := strings.TrimSpace(desc)
	s = strings.TrimSpace(packTrailRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(eachTrailRe.ReplaceAllString(s, ""))
	return s
}

// tightenUnits compacts dimension text for label space: "24 mm" becomes
// "24mm", verbose diameter/thread terms get their short form.
func tightenUnits(s string) string {
	s = unitGapRe.ReplaceAllString(s, "$1$2")
	s = outerDiaRe.ReplaceAllString(s, "OD")
	s = innerDiaRe.ReplaceAllString(s, "ID")
	s = diameterRe.ReplaceAllString(s, "Dia")
	s = threadSzRe.ReplaceAllString(s, "Thread")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// Fields derives (descClean, line1, line2) for a part. Line1 is the display
// name, line2 a compact spec string.
func Fields(vendor constants.Vendor, sku, description, mfgPN string) (descClean, line1, line2 string) {
	descClean = CleanDescription(description)
	if descClean == "" {
		line1 = strings.TrimSpace(mfgPN)
		if line1 == "" {
			line1 = strings.TrimSpace(sku)
		}
		return descClean, line1, ""
	}

	// Multi-line descriptions ending in a CAD filename: the filename is the
	// name, material plus dimensions become the spec line.
	descLines := nonEmptyLines(descClean)
	if len(descLines) >= 2 {
		last := descLines[len(descLines)-1]
		if cadFileRe.MatchString(last) {
			material := descLines[0]
			var specBits []string
			for _, b := range descLines[1 : len(descLines)-1] {
				if t := tightenUnits(b); t != "" {
					specBits = append(specBits, t)
				}
			}
			line2 = material
			if len(specBits) > 0 {
				line2 = strings.Join(append([]string{material}, specBits...), " - ")
			}
			return descClean, last, line2
		}
	}

	// A CAD filename in the SKU slot also wins the name position.
	if sku != "" && cadFileRe.MatchString(strings.TrimSpace(sku)) {
		return descClean, strings.TrimSpace(sku), strings.Join(descLines, " - ")
	}

	// Comma-separated catalog specs: first clause names the part, numeric or
	// keyword clauses build the spec line.
	parts := commaChunks(descClean)
	line1 = descClean
	if len(parts) > 0 {
		line1 = parts[0]
	}

	var specs []string
	for _, p := range parts[min(1, len(parts)):] {
		if !hasDigitRe.MatchString(p) && !hasKeyWord(p) {
			continue
		}
		if packWordRe.MatchString(p) {
			continue
		}
		specs = append(specs, tightenUnits(p))
	}
	if len(specs) == 0 {
		if m := threadDimRe.FindStringSubmatch(descClean); m != nil {
			specs = append(specs, tightenUnits(m[1]))
		}
	}
	if len(specs) > 4 {
		specs = specs[:4]
	}
	line2 = strings.Join(specs, " - ")

	if line2 == "" {
		if pn := strings.TrimSpace(mfgPN); pn != "" {
			line2 = pn
		} else if s := strings.TrimSpace(sku); s != "" {
			line2 = s
		}
	}
	return descClean, line1, line2
}

// PurchaseURL returns a re-order link suitable for a QR code, or "" for
// vendors without a stable deep-link scheme.
func PurchaseURL(vendor constants.Vendor, sku string) string {
	s := strings.TrimSpace(sku)
	if s == "" {
		return ""
	}
	switch vendor {
	case constants.VendorDigiKey:
		return "https://www.digikey.com/en/products?keywords=" + url.QueryEscape(s)
	case constants.VendorMcMaster:
		return "https://www.mcmaster.com/#" + url.QueryEscape(s)
	case constants.VendorArduino:
		return "https://store-usa.arduino.cc/search?type=product%2Cquery&options%5Bprefix%5D=last&q=" + url.QueryEscape(s)
	}
	return ""
}

// AirtableURL expands the configured item template. Supported tokens:
// {part_key}, {vendor}, {sku}.
func AirtableURL(template, partKey string, vendor constants.Vendor, sku string) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{part_key}", partKey,
		"{vendor}", string(vendor),
		"{sku}", sku,
	)
	return r.Replace(template)
}

// PickQRURL chooses the link the QR encodes. target "airtable" prefers the
// Airtable record link when one exists; anything else prefers the purchase
// link.
func PickQRURL(target, purchaseURL, airtableURL string) string {
	p := strings.TrimSpace(purchaseURL)
	a := strings.TrimSpace(airtableURL)
	if strings.EqualFold(strings.TrimSpace(target), "airtable") {
		if a != "" {
			return a
		}
		return p
	}
	if p != "" {
		return p
	}
	return a
}

// Short builds the compact one-liner for small labels, at most ShortMaxLen
// characters with a trailing ellipsis when truncated.
func Short(line1, line2, sku, mfgPN string) string {
	l1 := strings.TrimSpace(line1)
	l2 := strings.TrimSpace(line2)
	base := l1
	if l2 != "" && (l1 == "" || !strings.Contains(strings.ToLower(l1), strings.ToLower(l2))) {
		if l1 != "" {
			base = l1 + " (" + l2 + ")"
		} else {
			base = l2
		}
	}
	if base == "" {
		base = strings.TrimSpace(mfgPN)
		if base == "" {
			base = strings.TrimSpace(sku)
		}
	}
	base = strings.TrimSpace(spaceRunRe.ReplaceAllString(base, " "))
	if len(base) > ShortMaxLen {
		base = strings.TrimRight(base[:ShortMaxLen-3], " ") + "..."
	}
	return base
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, ln := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func commaChunks(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func hasKeyWord(chunk string) bool {
	low := strings.ToLower(chunk)
	for _, k := range keyWords {
		if strings.Contains(low, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
