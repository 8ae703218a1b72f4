package render

import (
	"fmt"
	"strings"
)

// FillMode decides how an image is fitted to the viewport.
type FillMode string

const (
	// FillCover scales to cover the viewport and crops the overflow.
	FillCover FillMode = "cover"
	// FillContain scales to fit inside the viewport with black bars.
	FillContain FillMode = "contain"
	// FillStretch stretches to the viewport, ignoring aspect ratio.
	FillStretch FillMode = "fill"
	// FillTile repeats the image at native size.
	FillTile FillMode = "tile"
	// FillCenter shows the image at native size, centered.
	FillCenter FillMode = "center"
)

// FillModes lists every mode in display order.
var FillModes = []FillMode{FillCover, FillContain, FillStretch, FillTile, FillCenter}

func ParseFillMode(s string) (FillMode, error) {
	switch m := FillMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FillCover, nil
	case FillCover, FillContain, FillStretch, FillTile, FillCenter:
		return m, nil
	case "stretch":
		return FillStretch, nil
	default:
		return "", fmt.Errorf("unknown fill mode %q", s)
	}
}

// UVScale returns the factors applied to texture coordinates around the
// center of the quad. Values below one crop, values above one leave the
// border outside the image.
func UVScale(mode FillMode, viewW, viewH, texW, texH int) (float32, float32) {
	if viewW <= 0 || viewH <= 0 || texW <= 0 || texH <= 0 {
		return 1, 1
	}
	va := float64(viewW) / float64(viewH)
	ta := float64(texW) / float64(texH)

	switch mode {
	case FillContain:
		if ta > va {
			return 1, float32(ta / va)
		}
		return float32(va / ta), 1
	case FillStretch:
		return 1, 1
	case FillTile, FillCenter:
		return float32(viewW) / float32(texW), float32(viewH) / float32(texH)
	default:
		if ta > va {
			return float32(va / ta), 1
		}
		return 1, float32(ta / va)
	}
}
