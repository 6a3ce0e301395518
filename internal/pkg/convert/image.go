package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// convertImage produces a markdown description of an image file.
// There is no OCR; the output records the format and dimensions so the
// document still appears in the knowledge base.
func convertImage(_ context.Context, data []byte, name string) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	return fmt.Sprintf("# %s\n\n- Format: %s\n- Dimensions: %dx%d\n- Size: %d bytes\n",
		name, format, cfg.Width, cfg.Height, len(data)), nil
}
