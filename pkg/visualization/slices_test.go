package visualization

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"neuroconnect/internal/models"
)

func testVolume() *models.LabeledVolume {
	vol := &models.LabeledVolume{
		Data:   make([]int32, 4*5*6),
		Nx:     4,
		Ny:     5,
		Nz:     6,
		Affine: models.Identity(),
	}
	vol.Data[2+4*(3+5*1)] = 7 // voxel (2, 3, 1)
	return vol
}

func TestExtractSlice(t *testing.T) {
	viewer := NewSliceViewer(testVolume())

	cases := []struct {
		axis          string
		position      int
		width, height int
	}{
		{"x", 2, 5, 6},
		{"y", 3, 4, 6},
		{"z", 1, 4, 5},
	}
	for _, tc := range cases {
		t.Run(tc.axis, func(t *testing.T) {
			img, err := viewer.ExtractSlice(tc.axis, tc.position)
			if err != nil {
				t.Fatalf("ExtractSlice failed: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tc.width || b.Dy() != tc.height {
				t.Errorf("slice is %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.width, tc.height)
			}
		})
	}

	t.Run("labeled voxel is colored", func(t *testing.T) {
		img, err := viewer.ExtractSlice("z", 1)
		if err != nil {
			t.Fatalf("ExtractSlice failed: %v", err)
		}
		black := color.RGBA{0, 0, 0, 255}
		if img.At(2, 3) == black {
			t.Error("labeled voxel rendered as background")
		}
		if img.At(0, 0) != black {
			t.Errorf("background voxel = %v, want black", img.At(0, 0))
		}
	})
}

func TestExtractSliceErrors(t *testing.T) {
	viewer := NewSliceViewer(testVolume())

	cases := []struct {
		name     string
		axis     string
		position int
	}{
		{"negative position", "z", -1},
		{"position past x", "x", 4},
		{"position past z", "z", 6},
		{"bad axis", "w", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := viewer.ExtractSlice(tc.axis, tc.position); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLabelColorStable(t *testing.T) {
	// Same label, same color, and neighbouring labels differ.
	if labelColor(7) != labelColor(7) {
		t.Error("label color is not stable")
	}
	if labelColor(7) == labelColor(8) {
		t.Error("adjacent labels share a color")
	}
}

func TestSaveSliceSequence(t *testing.T) {
	viewer := NewSliceViewer(testVolume())
	dir := filepath.Join(t.TempDir(), "slices")

	if err := viewer.SaveSliceSequence("z", dir); err != nil {
		t.Fatalf("SaveSliceSequence failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 {
		t.Errorf("got %d slice files, want 6", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "slice_z_000.png")); err != nil {
		t.Errorf("first slice missing: %v", err)
	}

	if err := viewer.SaveSliceSequence("w", t.TempDir()); err == nil {
		t.Error("expected error for invalid axis")
	}
}
