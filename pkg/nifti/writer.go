package nifti

import (
	"encoding/binary"
	"fmt"
	"io"

	"neuroconnect/internal/models"
)

// Encode writes vol as a little-endian single-file NIfTI-1 image with
// int32 voxels and an sform affine. It is the inverse of Decode for label
// volumes and is used to produce synthetic atlases.
func Encode(w io.Writer, vol *models.LabeledVolume) error {
	if len(vol.Data) != vol.Nx*vol.Ny*vol.Nz {
		return fmt.Errorf("volume data length %d does not match dimensions %dx%dx%d",
			len(vol.Data), vol.Nx, vol.Ny, vol.Nz)
	}

	var hdr header
	hdr.SizeofHdr = 348
	hdr.Regular = 'r'
	hdr.Dim = [8]int16{3, int16(vol.Nx), int16(vol.Ny), int16(vol.Nz), 1, 1, 1, 1}
	hdr.Datatype = typeInt32
	hdr.Bitpix = 32
	hdr.Pixdim = [8]float32{1, 1, 1, 1, 0, 0, 0, 0}
	hdr.VoxOffset = 352
	hdr.SclSlope = 1
	hdr.SformCode = 1
	for j := 0; j < 4; j++ {
		hdr.SrowX[j] = float32(vol.Affine[0][j])
		hdr.SrowY[j] = float32(vol.Affine[1][j])
		hdr.SrowZ[j] = float32(vol.Affine[2][j])
	}
	hdr.Magic = [4]byte{'n', '+', '1', 0}

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing NIfTI header: %w", err)
	}
	// Four padding bytes between the 348-byte header and vox_offset 352.
	if _, err := w.Write(make([]byte, 4)); err != nil {
		return fmt.Errorf("writing header padding: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, vol.Data); err != nil {
		return fmt.Errorf("writing voxel data: %w", err)
	}
	return nil
}
