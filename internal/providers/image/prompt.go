package image

import (
	"fmt"
	"strings"
)

// BuildFusionInstruction wraps a scene description in the fixed compositing
// template. Product fidelity and physical integration are non-negotiable.
func BuildFusionInstruction(scene string) string {
	lines := []string{
		fmt.Sprintf("Take the provided product image and place it realistically into the following scene: %q.", strings.TrimSpace(scene)),
		"",
		"CRITICAL INSTRUCTION: The features, details, and colors of the product in the provided image must be preserved with 100% accuracy. Do not change the product itself.",
		"",
		"Integrate the product into the scene by generating realistic contact shadows, subtle reflections on the surface, and ensuring the scene's lighting naturally wraps around the product. The final image should be a seamless, photorealistic composition.",
	}
	return strings.Join(lines, "\n")
}
