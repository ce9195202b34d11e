package nifti

import (
	"errors"
	"os"
	"path/filepath"
)

// AtlasFilename is the JHU white matter atlas shipped with FSL.
const AtlasFilename = "JHU-ICBM-labels-1mm.nii.gz"

// ErrAtlasNotFound is returned when no search path contains the atlas.
var ErrAtlasNotFound = errors.New(
	"JHU atlas not found; download it from https://neurovault.org/images/1401/ " +
		"and place it in the data directory as " + AtlasFilename)

// LocateAtlas searches the configured data directory, the working
// directory and $FSLDIR for the JHU atlas and returns the first match.
func LocateAtlas(dataDir string) (string, error) {
	candidates := []string{
		filepath.Join(dataDir, AtlasFilename),
		filepath.Join("data", AtlasFilename),
	}
	if fslDir := os.Getenv("FSLDIR"); fslDir != "" {
		candidates = append(candidates,
			filepath.Join(fslDir, "data", "atlases", "JHU", AtlasFilename))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrAtlasNotFound
}
