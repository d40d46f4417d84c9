// Package media fetches branch illustrations from the image-generation
// service and post-processes them to the app's fixed size and compression.
// Media is the non-durable half of a level: fetch failures leave a
// recognized "no image yet" state that Backfill repairs later.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Generated images may arrive as PNG; register the decoder.
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Optimize resizes raw image bytes to size x size and recompresses them as
// JPEG at the given quality.
func Optimize(raw []byte, size, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
