package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"neuroconnect/pkg/extractor"
	"neuroconnect/pkg/nifti"
	"neuroconnect/pkg/visualization"
)

func main() {
	// Parse command line arguments
	atlasPath := flag.String("atlas", "", "Path to the JHU label atlas (default: search data dir, cwd, $FSLDIR)")
	dataDir := flag.String("data", "data", "Data directory")
	outputName := flag.String("output", "jhu_coordinates.csv", "Output coordinate CSV filename")
	extractSlices := flag.Bool("extract-slices", false, "Save atlas label slices along all axes for QA")
	slicesDir := flag.String("slices-dir", "atlas_slices", "Directory to save extracted slices")
	flag.Parse()

	// Locate atlas
	path := *atlasPath
	if path == "" {
		var err error
		path, err = nifti.LocateAtlas(*dataDir)
		if err != nil {
			log.Fatalf("Atlas lookup failed: %v", err)
		}
	}

	fmt.Println("================================")
	fmt.Println("NEUROCONNECT TRACT COORDINATE EXTRACTION")
	fmt.Println("JHU ICBM-DTI-81 white matter atlas")
	fmt.Println("================================")
	fmt.Printf("Atlas: %s\n", path)

	// Load the label volume
	vol, err := nifti.LoadLabelVolume(path)
	if err != nil {
		log.Fatalf("Failed to load atlas: %v", err)
	}
	fmt.Printf("Volume: %dx%dx%d voxels, labels 1-%d\n", vol.Nx, vol.Ny, vol.Nz, vol.MaxLabel())

	// Extract base tracts and derive composites
	table, err := extractor.BuildTable(vol)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	// Save the coordinate table
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	outputPath := filepath.Join(*dataDir, *outputName)
	if err := extractor.SaveTableFile(outputPath, table); err != nil {
		log.Fatalf("Failed to save coordinates: %v", err)
	}

	fmt.Printf("\nSaved to: %s\n", outputPath)
	fmt.Printf("Total tracts: %d\n", len(table.Records))
	fmt.Printf("  - %d base tracts\n", len(table.Records)-len(extractor.CompositeTracts))
	fmt.Printf("  - %d composite tracts\n", len(extractor.CompositeTracts))
	if len(table.Skipped) > 0 {
		fmt.Printf("  - skipped (no voxels): %v\n", table.Skipped)
	}

	// Extract and save slices if requested
	if *extractSlices {
		fmt.Println("\nExtracting atlas slices along all axes...")

		viewer := visualization.NewSliceViewer(vol)
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(*slicesDir, axis)
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)

			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}

		fmt.Println("Slice extraction completed!")
	}
}
