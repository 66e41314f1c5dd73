package contract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/sudmegaphone/backend/internal/models"
)

const barcodePlaceholder = "[Image code-barres non disponible]"

// Stamper overlays client data onto a contract template. Per-field
// failures degrade that field (fallback position, placeholder text) and
// never abort the generation: the output is always a complete PDF.
type Stamper struct {
	fetcher ImageFetcher
	conf    *model.Configuration
}

func NewStamper(fetcher ImageFetcher) *Stamper {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Stamper{fetcher: fetcher, conf: conf}
}

func (s *Stamper) Stamp(ctx context.Context, template []byte, mappings []models.FieldMapping, record *models.Client, barcodeImageURL string) ([]byte, error) {
	dims, err := api.PageDims(bytes.NewReader(template), s.conf)
	if err != nil {
		return nil, fmt.Errorf("read template page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("template has no pages")
	}

	wms := make(map[int][]*model.Watermark)
	fieldsProcessed := make(map[int]int)

	for _, m := range mappings {
		resolved, err := ResolveMapping(m, record)
		if err != nil {
			slog.Warn("skipping unresolvable field mapping",
				"placeholder", m.Placeholder, "client_field", m.ClientField, "error", err)
			continue
		}

		page := resolved.Page
		if page > len(dims) {
			page = len(dims)
		}
		pageDim := dims[page-1]

		x, y := s.placement(resolved, pageDim, fieldsProcessed[page])

		var wm *model.Watermark
		switch resolved.Kind {
		case BarcodeImageField:
			wm = s.barcodeWatermark(ctx, barcodeImageURL, x, y, resolved.FontSize)
		default:
			if resolved.Value == "" {
				continue // nothing to draw, not an error
			}
			wm = s.textWatermark(resolved.Value, x, y, resolved.FontSize)
		}
		if wm == nil {
			continue
		}

		wms[page] = append(wms[page], wm)
		fieldsProcessed[page]++
	}

	if len(wms) == 0 {
		// Nothing drawable; the template itself is the result.
		return template, nil
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(template), &out, wms, s.conf); err != nil {
		return nil, fmt.Errorf("stamp template: %w", err)
	}
	return out.Bytes(), nil
}

// placement validates the mapping coordinates against the page box and
// falls back to a synthetic vertical layout for out-of-range mappings so
// one bad mapping degrades its own field, not the document.
func (s *Stamper) placement(r ResolvedMapping, dim types.Dim, fieldsProcessed int) (float64, float64) {
	x, y := r.X, r.Y
	if x < 0 || x > dim.Width || y < 0 || y > dim.Height {
		x = 50
		y = dim.Height - 50 - float64(fieldsProcessed)*30
		if y < 0 {
			y = 0
		}
		slog.Warn("field mapping out of page bounds, repositioned",
			"orig_x", r.X, "orig_y", r.Y, "x", x, "y", y)
	}
	return x, y
}

func (s *Stamper) textWatermark(text string, x, y float64, fontSize int) *model.Watermark {
	desc := fmt.Sprintf("fontname:Helvetica, points:%d, scale:1 abs, pos:bl, off:%.1f %.1f, rot:0, fillcolor:#000000, opacity:1",
		fontSize, x, y)
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		slog.Error("build text watermark", "error", err, "text", text)
		return nil
	}
	return wm
}

// barcodeWatermark fetches and embeds the barcode image; any failure is
// downgraded to a visible placeholder string at the same position.
func (s *Stamper) barcodeWatermark(ctx context.Context, url string, x, y float64, fontSize int) *model.Watermark {
	if url == "" {
		return s.textWatermark(barcodePlaceholder, x, y, fontSize)
	}

	data, contentType, err := s.fetcher.Fetch(ctx, url)
	if err != nil || !supportedImage(contentType, url) {
		slog.Warn("barcode image unavailable, using placeholder", "url", url, "content_type", contentType, "error", err)
		return s.textWatermark(barcodePlaceholder, x, y, fontSize)
	}

	// Reject corrupt bytes up front so a bad image degrades this field
	// instead of failing the whole document at serialization time.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		slog.Warn("barcode image undecodable, using placeholder", "url", url, "error", err)
		return s.textWatermark(barcodePlaceholder, x, y, fontSize)
	}

	desc := fmt.Sprintf("pos:bl, off:%.1f %.1f, scale:0.5 abs, rot:0, opacity:1", x, y)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(data), desc, true, false, types.POINTS)
	if err != nil {
		slog.Warn("barcode image embed failed, using placeholder", "url", url, "error", err)
		return s.textWatermark(barcodePlaceholder, x, y, fontSize)
	}
	return wm
}
