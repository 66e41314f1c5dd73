package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"international moroccan", "Tel: +212612345678", "212612345678"},
		{"spaced international", "contact +212 6 12 34 56 78 merci", "212612345678"},
		{"local moroccan", "GSM 0612345678", "0612345678"},
		{"dotted local", "06.12.34.56.78", "0612345678"},
		{"no digits", "ROYAUME DU MAROC", ""},
		{"too short run", "code 1234567", ""},
		{"too long run", "ref 1234567890123456", ""},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.text))
		})
	}
}

func TestBarcodeMarkerWins(t *testing.T) {
	text := "numero 1234567890\nP=0425\nfin"
	assert.Equal(t, "P=0425", Barcode(text, ""))

	// Spaced marker is normalized.
	assert.Equal(t, "P=0425", Barcode("P = 0425", ""))
}

func TestBarcodeExcludesPhone(t *testing.T) {
	text := "appeler 0612345678 svp"
	assert.Equal(t, "", Barcode(text, "0612345678"))

	// Another digit run is still eligible.
	text = "0612345678 dossier 9988776655"
	assert.Equal(t, "9988776655", Barcode(text, "0612345678"))
}

func TestBarcodeExclusions(t *testing.T) {
	// Passport-shaped tokens and boilerplate never come back as barcodes.
	assert.Equal(t, "", Barcode("AB1234567", ""))
	assert.Equal(t, "", Barcode("REPUBLIQUE PASSEPORT NATIONALE IDENTITE", ""))
	assert.Equal(t, "", Barcode("", ""))
}

func TestBarcodeHyphenatedCode(t *testing.T) {
	assert.Equal(t, "AZ12-BC34", Barcode("ref AZ12-BC34 ok", ""))
}

func TestDecodeMRZDatePivots(t *testing.T) {
	// Birth dates pivot at 30.
	assert.Equal(t, "1999-01-01", decodeMRZDate("990101", 30))
	assert.Equal(t, "2005-01-01", decodeMRZDate("050101", 30))
	assert.Equal(t, "2030-06-15", decodeMRZDate("300615", 30))
	assert.Equal(t, "1931-06-15", decodeMRZDate("310615", 30))

	// Expiry dates pivot at 50.
	assert.Equal(t, "2031-12-31", decodeMRZDate("311231", 50))
	assert.Equal(t, "1951-12-31", decodeMRZDate("511231", 50))

	// Garbage never decodes.
	assert.Equal(t, "", decodeMRZDate("99A101", 30))
	assert.Equal(t, "", decodeMRZDate("991301", 30))
	assert.Equal(t, "", decodeMRZDate("9901", 30))
}

func TestMRZFullParse(t *testing.T) {
	text := "ROYAUME DU MAROC\n" +
		"P<MARBENNANI<<YOUSSEF<KARIM<<<<<<<<<<<<<<<<<<\n" +
		"AB123456<7MAR9901018M2503012<<<<<<<<<<<<<<04\n"

	got := MRZ(text)
	assert.Equal(t, "AB123456", got.DocumentNumber)
	assert.Equal(t, "MAR", got.Nationality)
	assert.Equal(t, "1999-01-01", got.BirthDate)
	assert.Equal(t, "2025-03-01", got.ExpiryDate)
	assert.Equal(t, "BENNANI", got.Surname)
	assert.Equal(t, "YOUSSEF KARIM", got.GivenNames)
}

func TestMRZMalformedInput(t *testing.T) {
	for _, text := range []string{"", "P<", "short line\nanother", "€€€€€€€€€€€€€€€€€€€€€€€€€€€€€€€€€€"} {
		got := MRZ(text)
		assert.Equal(t, MRZData{}, got, "input %q", text)
	}
}

func TestNormalizeNationality(t *testing.T) {
	assert.Equal(t, "Maroc", NormalizeNationality("MAROCAIN"))
	assert.Equal(t, "Maroc", NormalizeNationality("morocco"))
	assert.Equal(t, "Maroc", NormalizeNationality("maroc"))
	assert.Equal(t, "France", NormalizeNationality("française"))
	assert.Equal(t, "", NormalizeNationality("  "))

	// Unmatched input passes through title-cased.
	assert.Equal(t, "Portugais", NormalizeNationality("PORTUGAIS"))
}

func TestNormalizeNationalityIdempotent(t *testing.T) {
	inputs := []string{"MAROCAIN", "morocco", "française", "algerian", "PORTUGAIS", "Sénégal", "royaume-uni"}
	for _, in := range inputs {
		once := NormalizeNationality(in)
		assert.Equal(t, once, NormalizeNationality(once), "input %q", in)
	}
}

func TestAllScenario(t *testing.T) {
	// A scan whose MRZ did not survive OCR still yields the marker barcode
	// and the phone, and nothing else.
	text := "ROYAUME DU MAROC\nP=0425\nCHEHBOUNE<<RANIA\n0612345678"

	got := All(text)
	assert.Equal(t, "P=0425", got.CodeBarre)
	assert.Equal(t, "0612345678", got.Telephone)
	assert.Empty(t, got.Nom)
	assert.Empty(t, got.Prenom)
	assert.Empty(t, got.NumeroDocument)
	assert.Empty(t, got.DateNaissance)
	assert.Empty(t, got.DateExpiration)
	assert.Empty(t, got.Nationalite)
}
