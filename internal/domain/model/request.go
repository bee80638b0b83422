package model

// ImageRequest is the provider-facing input of one image generation attempt.
type ImageRequest struct {
	Instruction string
	Primary     Media
	Secondary   *Media
	Pattern     *Media
	AspectRatio string
	Model       string
}

// VideoRequest seeds a video from a generated image.
type VideoRequest struct {
	Source      Media
	Label       string
	Model       string
	AspectRatio string
}

// VideoAspectRatio maps an image aspect ratio onto the two ratios the video model accepts.
func VideoAspectRatio(imageRatio string) string {
	switch imageRatio {
	case "9:16", "3:4", "1:1":
		return "9:16"
	default:
		return "16:9"
	}
}
