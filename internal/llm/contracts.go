package llm

import "context"

// PageImage is one rendered document page sent to the vision model.
type PageImage struct {
	Page     int    // 1-based page number
	MIMEType string // e.g. "image/png"
	Data     []byte // raw image bytes, not base64
}

// GenerateRequest carries the prompt and one page image.
type GenerateRequest struct {
	Prompt string
	Image  PageImage
}

// TextGenerator produces the raw response text for one page. The output is
// whatever the model returned, fences and all; recovery happens downstream.
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}
