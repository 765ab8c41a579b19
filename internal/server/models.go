package server

// URLRequest asks for a web page to be fetched, extracted, and rendered.
type URLRequest struct {
	URL string `json:"url" binding:"required"`
}

// HTMLRequest carries raw HTML to extract and render.
type HTMLRequest struct {
	HTMLContent string `json:"html_content" binding:"required"`
}

// Base64Request carries base64-encoded HTML to decode, extract, and render.
type Base64Request struct {
	HTMLBase64 string `json:"html_base64" binding:"required"`
}

// ErrorResponse is the machine-readable error body every failure maps to.
type ErrorResponse struct {
	Error string `json:"error"`
}
