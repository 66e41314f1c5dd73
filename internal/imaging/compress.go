// Package imaging bounds the size of document photos before they are sent
// to the OCR provider or written to storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // initial JPEG quality, stepped down to meet MaxSizeKB
	MaxSizeKB int
}

func DefaultOptions() Options {
	return Options{MaxWidth: 1600, MaxHeight: 1600, Quality: 85, MaxSizeKB: 900}
}

// Compress re-encodes data as JPEG under opts.MaxSizeKB, preserving aspect
// ratio. Input already under the ceiling is returned unchanged. Callers
// treat an error as "use the original bytes": a failed compression must
// not abort a scan.
func Compress(data []byte, opts Options) ([]byte, error) {
	if opts.MaxSizeKB > 0 && len(data) <= opts.MaxSizeKB*1024 {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := resize(src, opts.MaxWidth, opts.MaxHeight)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if opts.MaxSizeKB <= 0 || buf.Len() <= opts.MaxSizeKB*1024 || quality <= 20 {
			break
		}
		quality -= 10
	}

	if opts.MaxSizeKB > 0 && buf.Len() > opts.MaxSizeKB*1024 {
		return nil, fmt.Errorf("image still %d bytes after compression, ceiling %d", buf.Len(), opts.MaxSizeKB*1024)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// resize scales src down to fit within maxW x maxH, never upscaling.
func resize(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 {
		maxW = w
	}
	if maxH <= 0 {
		maxH = h
	}
	if w <= maxW && h <= maxH {
		return src
	}

	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(float64(w) * ratio)
	nh := int(float64(h) * ratio)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
