package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudmegaphone/backend/internal/models"
)

// minimalPDF assembles a valid single-page A4 document from scratch so
// stamping can be tested without a fixture file.
func minimalPDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << >> >>\nendobj\n",
		"4 0 obj\n<< /Length 5 >>\nstream\nBT ET\nendstream\nendobj\n",
	}

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		buf.WriteString(obj)
	}

	xrefOffset := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(objects)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset))

	return buf.Bytes()
}

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	return nil, "", errors.New("connection refused")
}

func testClient() *models.Client {
	return &models.Client{
		Nom:             "DUPONT",
		Prenom:          "Marie",
		NumeroPasseport: "AB123456",
		DocumentType:    models.DocTypePasseportEtranger,
	}
}

func pageCount(t *testing.T, pdfBytes []byte) int {
	t.Helper()
	s := NewStamper(failingFetcher{})
	dims, err := api.PageDims(bytes.NewReader(pdfBytes), s.conf)
	require.NoError(t, err)
	return len(dims)
}

func TestStampPartialFailureStillProducesPDF(t *testing.T) {
	template := minimalPDF(t)
	stamper := NewStamper(failingFetcher{})

	mappings := []models.FieldMapping{
		{Placeholder: "{nom}", ClientField: "nom", Page: 1, X: 100, Y: 700, FontSize: 12},
		{Placeholder: "{barcode}", ClientField: "code_barre_image", Page: 1, X: 100, Y: 200, FontSize: 10},
	}

	out, err := stamper.Stamp(context.Background(), template, mappings, testClient(), "https://storage.example/barcodes/x.png")
	require.NoError(t, err, "an unreachable barcode image must not fail the generation")
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 1, pageCount(t, out))
	assert.Greater(t, len(out), len(template), "stamped output carries the overlay content")
}

func TestStampOutOfBoundsCoordinateIsRepositioned(t *testing.T) {
	template := minimalPDF(t)
	stamper := NewStamper(failingFetcher{})

	mappings := []models.FieldMapping{
		{Placeholder: "{nom}", ClientField: "nom", Page: 1, X: 100, Y: 99999, FontSize: 12},
	}

	out, err := stamper.Stamp(context.Background(), template, mappings, testClient(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(t, out))
}

func TestStampEmptyValuesDrawNothing(t *testing.T) {
	template := minimalPDF(t)
	stamper := NewStamper(failingFetcher{})

	// Telephone is empty and the checkbox does not match the doc type:
	// nothing to draw, the template comes back untouched.
	mappings := []models.FieldMapping{
		{Placeholder: "{tel}", ClientField: "telephone", Page: 1, X: 100, Y: 700, FontSize: 12},
		{Placeholder: "{cb}", ClientField: "checkbox_cin", Page: 1, X: 50, Y: 650, FontSize: 12},
	}

	out, err := stamper.Stamp(context.Background(), template, mappings, testClient(), "")
	require.NoError(t, err)
	assert.Equal(t, template, out)
}

func TestStampRejectsPagelessTemplate(t *testing.T) {
	stamper := NewStamper(failingFetcher{})
	_, err := stamper.Stamp(context.Background(), []byte("not a pdf"), nil, testClient(), "")
	assert.Error(t, err)
}

func TestResolveMappingVariants(t *testing.T) {
	c := testClient()

	text, err := ResolveMapping(models.FieldMapping{ClientField: "nom", Page: 1, X: 1, Y: 2, FontSize: 9}, c)
	require.NoError(t, err)
	assert.Equal(t, TextField, text.Kind)
	assert.Equal(t, "DUPONT", text.Value)
	assert.Equal(t, 9, text.FontSize)

	img, err := ResolveMapping(models.FieldMapping{ClientField: "code_barre_image"}, c)
	require.NoError(t, err)
	assert.Equal(t, BarcodeImageField, img.Kind)
	assert.Equal(t, 1, img.Page, "page defaults to 1")
	assert.Equal(t, 12, img.FontSize, "font size defaults to 12")

	_, err = ResolveMapping(models.FieldMapping{ClientField: "no_such_column"}, c)
	assert.Error(t, err)
}

func TestResolveMappingDefaultValue(t *testing.T) {
	c := testClient() // telephone empty
	r, err := ResolveMapping(models.FieldMapping{ClientField: "telephone", DefaultValue: "N/A"}, c)
	require.NoError(t, err)
	assert.Equal(t, "N/A", r.Value)
}

func TestCheckboxMark(t *testing.T) {
	tests := []struct {
		field   string
		docType string
		want    string
	}{
		{"checkbox_cin", models.DocTypeCIN, "X"},
		{"checkbox_cin", models.DocTypePasseportMarocain, ""},
		{"checkbox_passeport", models.DocTypePasseportMarocain, "X"},
		{"checkbox_passeport", models.DocTypePasseportEtranger, "X"},
		{"checkbox_passeport", models.DocTypeCarteSejour, ""},
		{"checkbox_titre_sejour", models.DocTypeCarteSejour, "X"},
		{"checkbox_titre_sejour", models.DocTypeCIN, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, checkboxMark(tt.field, tt.docType), "%s/%s", tt.field, tt.docType)
	}
}

func TestSupportedImage(t *testing.T) {
	assert.True(t, supportedImage("image/png", ""))
	assert.True(t, supportedImage("image/jpeg", ""))
	assert.True(t, supportedImage("", "https://x/barcode.PNG"))
	assert.True(t, supportedImage("application/octet-stream", "https://x/code.jpg"))
	assert.False(t, supportedImage("image/gif", "https://x/code.gif"))
}
