package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"neuroconnect/internal/models"
)

// SliceViewer renders 2D cross-sections of a labeled atlas volume, with
// each region label drawn in a stable color. It is used for QA previews
// of the atlas before extraction.
type SliceViewer struct {
	vol *models.LabeledVolume
}

// NewSliceViewer creates a viewer over the volume.
func NewSliceViewer(vol *models.LabeledVolume) *SliceViewer {
	return &SliceViewer{vol: vol}
}

// ExtractSlice extracts a 2D slice from the label volume along the
// specified axis. Background (label 0) is black; every other label maps
// to a deterministic color.
func (v *SliceViewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.RGBA

	switch axis {
	case "x", "X":
		// Extract slice along YZ plane
		if position >= v.vol.Nx {
			return nil, fmt.Errorf("position %d exceeds x dimension %d", position, v.vol.Nx)
		}
		img = image.NewRGBA(image.Rect(0, 0, v.vol.Ny, v.vol.Nz))
		for z := 0; z < v.vol.Nz; z++ {
			for y := 0; y < v.vol.Ny; y++ {
				img.Set(y, z, labelColor(v.vol.At(position, y, z)))
			}
		}

	case "y", "Y":
		// Extract slice along XZ plane
		if position >= v.vol.Ny {
			return nil, fmt.Errorf("position %d exceeds y dimension %d", position, v.vol.Ny)
		}
		img = image.NewRGBA(image.Rect(0, 0, v.vol.Nx, v.vol.Nz))
		for z := 0; z < v.vol.Nz; z++ {
			for x := 0; x < v.vol.Nx; x++ {
				img.Set(x, z, labelColor(v.vol.At(x, position, z)))
			}
		}

	case "z", "Z":
		// Extract slice along XY plane
		if position >= v.vol.Nz {
			return nil, fmt.Errorf("position %d exceeds z dimension %d", position, v.vol.Nz)
		}
		img = image.NewRGBA(image.Rect(0, 0, v.vol.Nx, v.vol.Ny))
		for y := 0; y < v.vol.Ny; y++ {
			for x := 0; x < v.vol.Nx; x++ {
				img.Set(x, y, labelColor(v.vol.At(x, y, position)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// labelColor maps a region label to a stable color by stepping the hue
// with the golden angle. Label 0 is background.
func labelColor(label int32) color.RGBA {
	if label == 0 {
		return color.RGBA{0, 0, 0, 255}
	}
	hue := math.Mod(float64(label)*137.508, 360)
	r, g, b := hsvToRGB(hue, 0.65, 0.95)
	return color.RGBA{r, g, b, 255}
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// SaveSlice saves an extracted slice as a PNG image.
func (v *SliceViewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveSliceSequence extracts and saves a sequence of slices along the
// specified axis.
func (v *SliceViewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.vol.Nx
	case "y", "Y":
		maxPos = v.vol.Ny
	case "z", "Z":
		maxPos = v.vol.Nz
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
