package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// MaxScale bounds the enlargement factor of a preview.
const MaxScale = 16

const goldenAngle = 137.50776405003785

// SliceResult contains one rendered label slice.
type SliceResult struct {
	Slice       int          `json:"slice"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Scale       int          `json:"scale"`
	ImageBase64 string       `json:"image_base64"`
	MimeType    string       `json:"mime_type"`
	Legend      []LegendItem `json:"legend"`
}

// LegendItem maps a label present in the slice to its preview color.
// Legend items are ordered by label.
type LegendItem struct {
	Label  int32  `json:"label"`
	Hex    string `json:"hex"`
	Voxels int    `json:"voxels"`
}

// LabelColor returns the preview color of a label. Label 0 is black.
func LabelColor(label int32) colorful.Color {
	if label <= 0 {
		return colorful.Color{}
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	// Alternate value so consecutive labels with close hues still differ.
	v := 0.95
	if label%2 == 0 {
		v = 0.75
	}
	return colorful.Hsv(hue, 0.7, v).Clamped()
}

// SliceImage paints slice index of labels into an RGBA image of W x H pixels.
func SliceImage(labels *voxel.Labels, index int) (*image.RGBA, error) {
	if index < 0 || index >= labels.D {
		return nil, fmt.Errorf("slice %d out of range [0,%d)", index, labels.D)
	}
	img := image.NewRGBA(image.Rect(0, 0, labels.W, labels.H))
	cache := map[int32]color.RGBA{}
	for j := 0; j < labels.H; j++ {
		for k := 0; k < labels.W; k++ {
			l := labels.At(voxel.Coord{I: index, J: j, K: k})
			c, ok := cache[l]
			if !ok {
				r, g, b := LabelColor(l).RGB255()
				c = color.RGBA{R: r, G: g, B: b, A: 255}
				cache[l] = c
			}
			img.SetRGBA(k, j, c)
		}
	}
	return img, nil
}

// LabelSlice renders slice index of labels as a base64 PNG enlarged by scale.
func LabelSlice(labels *voxel.Labels, index, scale int) (*SliceResult, error) {
	if scale < 1 || scale > MaxScale {
		return nil, fmt.Errorf("scale %d out of range [1,%d]", scale, MaxScale)
	}
	img, err := SliceImage(labels, index)
	if err != nil {
		return nil, err
	}

	var out image.Image = img
	if scale > 1 {
		out = transform.Resize(img, labels.W*scale, labels.H*scale, transform.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := out.Bounds()
	return &SliceResult{
		Slice:       index,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Scale:       scale,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Legend:      legend(labels, index),
	}, nil
}

func legend(labels *voxel.Labels, index int) []LegendItem {
	counts := map[int32]int{}
	var order []int32
	off := index * labels.H * labels.W
	for _, l := range labels.Data[off : off+labels.H*labels.W] {
		if l == 0 {
			continue
		}
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}
	slices.Sort(order)
	items := make([]LegendItem, 0, len(order))
	for _, l := range order {
		items = append(items, LegendItem{Label: l, Hex: LabelColor(l).Hex(), Voxels: counts[l]})
	}
	return items
}
