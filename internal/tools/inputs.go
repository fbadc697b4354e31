package tools

import (
	"fmt"

	"github.com/brand-loop/creatives/internal/assets"
)

// editAspectRatios is the accepted set for edit requests.
var editAspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:5":  true,
	"5:4":  true,
	"2:3":  true,
	"3:2":  true,
}

// GenerateImageInput are the parameters of a generate_image call.
type GenerateImageInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	TextOverlay string `json:"text_overlay,omitempty"`
	AssetName   string `json:"asset_name,omitempty"`
}

// Validate checks required fields and applies defaults.
func (in *GenerateImageInput) Validate() error {
	if in.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if in.AspectRatio == "" {
		in.AspectRatio = "1:1"
	}
	if in.AssetName == "" {
		in.AssetName = assets.DefaultAssetName
	}
	return nil
}

// EditImageInput are the parameters of an edit_image call.
type EditImageInput struct {
	ArtifactFilename string `json:"artifact_filename"`
	Prompt           string `json:"prompt"`
	AspectRatio      string `json:"aspect_ratio"`
	AssetName        string `json:"asset_name,omitempty"`
}

// Validate checks required fields and the aspect ratio enumeration.
func (in *EditImageInput) Validate() error {
	if in.ArtifactFilename == "" {
		return fmt.Errorf("artifact_filename is required")
	}
	if in.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if in.AspectRatio == "" {
		return fmt.Errorf("aspect_ratio is required")
	}
	if !editAspectRatios[in.AspectRatio] {
		return fmt.Errorf("invalid aspect_ratio %q: accepted values are '1:1', '16:9', '9:16', '4:5', '5:4', '2:3', '3:2'", in.AspectRatio)
	}
	return nil
}

// GenerateVideoInput are the parameters of a generate_video call.
type GenerateVideoInput struct {
	Prompt                 string `json:"prompt"`
	AssetName              string `json:"asset_name,omitempty"`
	ReferenceImageFilename string `json:"reference_image_filename"`
}

// Validate checks required fields and applies defaults.
func (in *GenerateVideoInput) Validate() error {
	if in.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if in.ReferenceImageFilename == "" {
		return fmt.Errorf("reference_image_filename is required (use 'latest' for the most recent image)")
	}
	if in.AssetName == "" {
		in.AssetName = assets.DefaultAssetName
	}
	return nil
}
