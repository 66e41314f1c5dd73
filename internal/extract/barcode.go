package extract

import (
	"regexp"
	"strings"
)

// The P= marker printed next to the barcode is an unambiguous signal and
// always wins over the generic patterns below.
var barcodeMarker = regexp.MustCompile(`P\s*=\s*[A-Za-z0-9]+`)

var barcodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{9,15}\b`),
	regexp.MustCompile(`\b[A-Z0-9]+(?:-[A-Z0-9]+)+\b`),
	regexp.MustCompile(`\b[A-Z0-9]{8,20}\b`),
}

// passportShaped matches tokens like AB1234567 which are document numbers,
// not barcodes.
var passportShaped = regexp.MustCompile(`^[A-Z]{1,2}\d{6,}$`)

// Boilerplate words that show up on identity documents and would otherwise
// satisfy the long-alphanumeric pattern.
var barcodeDenylist = map[string]bool{
	"ROYAUME":    true,
	"KINGDOM":    true,
	"MOROCCO":    true,
	"MAROC":      true,
	"PASSEPORT":  true,
	"PASSPORT":   true,
	"CARTE":      true,
	"NATIONALE":  true,
	"IDENTITE":   true,
	"REPUBLIQUE": true,
}

// Barcode pulls the barcode/document code out of OCR text. phoneToExclude
// is the already-extracted phone number; a candidate equal to it is never
// returned. Returns "" when nothing usable is found.
func Barcode(text, phoneToExclude string) string {
	if m := barcodeMarker.FindString(text); m != "" {
		// Normalize "P = 0425" to "P=0425".
		parts := strings.SplitN(m, "=", 2)
		return "P=" + strings.TrimSpace(parts[1])
	}

	for _, re := range barcodePatterns {
		for _, candidate := range re.FindAllString(text, -1) {
			if len(candidate) < 3 {
				continue
			}
			if candidate == phoneToExclude {
				continue
			}
			if passportShaped.MatchString(candidate) {
				continue
			}
			if barcodeDenylist[strings.ToUpper(candidate)] {
				continue
			}
			return candidate
		}
	}
	return ""
}
