package nifti

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"neuroconnect/internal/models"
)

func sampleVolume() *models.LabeledVolume {
	vol := &models.LabeledVolume{
		Data:   make([]int32, 4*5*6),
		Nx:     4,
		Ny:     5,
		Nz:     6,
		Affine: models.Identity(),
	}
	// A few scattered labels to catch index-order mistakes.
	vol.Data[0] = 1
	vol.Data[1+4*(2+5*3)] = 7
	vol.Data[3+4*(4+5*5)] = 48
	return vol
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vol := sampleVolume()

	var buf bytes.Buffer
	if err := Encode(&buf, vol); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Nx != 4 || got.Ny != 5 || got.Nz != 6 {
		t.Fatalf("dimensions = %dx%dx%d, want 4x5x6", got.Nx, got.Ny, got.Nz)
	}
	if diff := cmp.Diff(vol.Data, got.Data); diff != "" {
		t.Errorf("voxel data mismatch (-want +got):\n%s", diff)
	}
	if got.At(1, 2, 3) != 7 {
		t.Errorf("At(1,2,3) = %d, want 7", got.At(1, 2, 3))
	}
	if got.MaxLabel() != 48 {
		t.Errorf("MaxLabel = %d, want 48", got.MaxLabel())
	}
}

func TestDecodeSformAffine(t *testing.T) {
	// A 2mm MNI-style grid: voxel (50, 60, 40) must land at mm
	// (10, -6, 8).
	vol := sampleVolume()
	vol.Affine = models.Affine{
		{2, 0, 0, -90},
		{0, 2, 0, -126},
		{0, 0, 2, -72},
		{0, 0, 0, 1},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, vol); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	mm := got.Affine.Apply(models.Vec3{X: 50, Y: 60, Z: 40})
	if mm != (models.Vec3{X: 10, Y: -6, Z: 8}) {
		t.Errorf("voxel (50,60,40) maps to %+v, want (10, -6, 8)", mm)
	}
}

func TestLoadLabelVolumeGzip(t *testing.T) {
	vol := sampleVolume()

	path := filepath.Join(t.TempDir(), "atlas.nii.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if err := Encode(gz, vol); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := LoadLabelVolume(path)
	if err != nil {
		t.Fatalf("LoadLabelVolume failed: %v", err)
	}
	if diff := cmp.Diff(vol.Data, got.Data); diff != "" {
		t.Errorf("gzip round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	junk := make([]byte, 400)
	for i := range junk {
		junk[i] = byte(i)
	}
	if _, err := Decode(bytes.NewReader(junk)); err == nil {
		t.Error("expected error for non-NIfTI input")
	}

	if _, err := Decode(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestLocateAtlas(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := LocateAtlas(t.TempDir())
		if !errors.Is(err, ErrAtlasNotFound) {
			t.Fatalf("expected ErrAtlasNotFound, got %v", err)
		}
	})

	t.Run("found in data dir", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, AtlasFilename)
		if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := LocateAtlas(dir)
		if err != nil {
			t.Fatalf("LocateAtlas failed: %v", err)
		}
		if got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})
}
