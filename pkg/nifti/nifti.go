// Package nifti reads NIfTI-1 label volumes such as the JHU white matter
// atlas. Only the subset of the format needed for integer atlas volumes is
// implemented: 3D images, scalar integer or float datatypes, optional gzip
// compression, and the sform/qform/pixdim affine hierarchy.
package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"neuroconnect/internal/models"
)

// NIfTI-1 datatype codes for the voxel data we accept.
const (
	typeUint8   = 2
	typeInt16   = 4
	typeInt32   = 8
	typeFloat32 = 16
	typeFloat64 = 64
)

// header is the fixed 348-byte NIfTI-1 header. Field order and sizes must
// match the on-disk layout exactly; binary.Read fills it in one call.
type header struct {
	SizeofHdr     int32
	DataTypeName  [10]byte
	DBName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QoffsetX      float32
	QoffsetY      float32
	QoffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

// LoadLabelVolume reads a NIfTI-1 file (optionally gzip-compressed) and
// returns it as a labeled volume. Voxel values are rounded to the nearest
// integer label; the affine follows the NIfTI precedence sform > qform >
// pixdim scaling.
func LoadLabelVolume(path string) (*models.LabeledVolume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening atlas file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream in %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return Decode(r)
}

// Decode reads an uncompressed NIfTI-1 stream.
func Decode(r io.Reader) (*models.LabeledVolume, error) {
	raw := make([]byte, 348)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading NIfTI header: %w", err)
	}

	order, err := byteOrder(raw)
	if err != nil {
		return nil, err
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(raw), order, &hdr); err != nil {
		return nil, fmt.Errorf("parsing NIfTI header: %w", err)
	}

	if m := hdr.Magic; !(m[0] == 'n' && (m[1] == '+' || m[1] == 'i') && m[2] == '1' && m[3] == 0) {
		return nil, fmt.Errorf("not a NIfTI-1 file (magic %q)", hdr.Magic[:])
	}
	if hdr.Magic[1] != '+' {
		return nil, fmt.Errorf("detached .hdr/.img pairs are not supported; use a single .nii file")
	}
	if hdr.Dim[0] < 3 {
		return nil, fmt.Errorf("expected a 3D volume, got %d dimensions", hdr.Dim[0])
	}

	nx, ny, nz := int(hdr.Dim[1]), int(hdr.Dim[2]), int(hdr.Dim[3])
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", nx, ny, nz)
	}
	nvox := nx * ny * nz

	// Skip any header extensions between the header and the voxel data.
	if skip := int64(hdr.VoxOffset) - 348; skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fmt.Errorf("skipping header extensions: %w", err)
		}
	}

	data, err := readVoxels(r, order, hdr.Datatype, nvox)
	if err != nil {
		return nil, err
	}

	return &models.LabeledVolume{
		Data:   data,
		Nx:     nx,
		Ny:     ny,
		Nz:     nz,
		Affine: affineFromHeader(&hdr),
	}, nil
}

// byteOrder determines the file's endianness from sizeof_hdr, which must
// read as 348 under the correct order.
func byteOrder(raw []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint32(raw[:4]) == 348 {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint32(raw[:4]) == 348 {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("not a NIfTI-1 file (sizeof_hdr != 348)")
}

func readVoxels(r io.Reader, order binary.ByteOrder, datatype int16, nvox int) ([]int32, error) {
	out := make([]int32, nvox)

	switch datatype {
	case typeUint8:
		buf := make([]byte, nvox)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("reading voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = int32(v)
		}
	case typeInt16:
		buf := make([]int16, nvox)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("reading voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = int32(v)
		}
	case typeInt32:
		if err := binary.Read(r, order, out); err != nil {
			return nil, fmt.Errorf("reading voxel data: %w", err)
		}
	case typeFloat32:
		buf := make([]float32, nvox)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("reading voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = int32(math.Round(float64(v)))
		}
	case typeFloat64:
		buf := make([]float64, nvox)
		if err := binary.Read(r, order, buf); err != nil {
			return nil, fmt.Errorf("reading voxel data: %w", err)
		}
		for i, v := range buf {
			out[i] = int32(math.Round(v))
		}
	default:
		return nil, fmt.Errorf("unsupported NIfTI datatype %d for a label volume", datatype)
	}

	return out, nil
}

// affineFromHeader builds the voxel-to-mm affine. sform takes precedence,
// then the qform quaternion method, then plain pixdim scaling.
func affineFromHeader(hdr *header) models.Affine {
	if hdr.SformCode > 0 {
		a := models.Identity()
		for j := 0; j < 4; j++ {
			a[0][j] = float64(hdr.SrowX[j])
			a[1][j] = float64(hdr.SrowY[j])
			a[2][j] = float64(hdr.SrowZ[j])
		}
		return a
	}
	if hdr.QformCode > 0 {
		return qformAffine(hdr)
	}

	a := models.Identity()
	a[0][0] = float64(hdr.Pixdim[1])
	a[1][1] = float64(hdr.Pixdim[2])
	a[2][2] = float64(hdr.Pixdim[3])
	return a
}

// qformAffine implements NIfTI "method 2": a rotation given by the
// quaternion (a,b,c,d), voxel scaling from pixdim, a qfac sign on the
// third column and the qoffset translation.
func qformAffine(hdr *header) models.Affine {
	b := float64(hdr.QuaternB)
	c := float64(hdr.QuaternC)
	d := float64(hdr.QuaternD)
	aa := 1 - b*b - c*c - d*d
	if aa < 0 {
		aa = 0
	}
	qa := math.Sqrt(aa)

	r := [3][3]float64{
		{qa*qa + b*b - c*c - d*d, 2 * (b*c - qa*d), 2 * (b*d + qa*c)},
		{2 * (b*c + qa*d), qa*qa + c*c - b*b - d*d, 2 * (c*d - qa*b)},
		{2 * (b*d - qa*c), 2 * (c*d + qa*b), qa*qa + d*d - c*c - b*b},
	}

	qfac := 1.0
	if hdr.Pixdim[0] < 0 {
		qfac = -1.0
	}
	sx, sy, sz := float64(hdr.Pixdim[1]), float64(hdr.Pixdim[2]), float64(hdr.Pixdim[3])*qfac

	a := models.Identity()
	for i := 0; i < 3; i++ {
		a[i][0] = r[i][0] * sx
		a[i][1] = r[i][1] * sy
		a[i][2] = r[i][2] * sz
	}
	a[0][3] = float64(hdr.QoffsetX)
	a[1][3] = float64(hdr.QoffsetY)
	a[2][3] = float64(hdr.QoffsetZ)
	return a
}
