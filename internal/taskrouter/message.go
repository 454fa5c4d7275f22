package taskrouter

// Message is a capture notification produced by a page fetcher.
type Message struct {
	Type string      `json:"type"`
	Data MessageData `json:"data"`
}

// MessageData carries the captured page.
type MessageData struct {
	// URL is the normalized page URL.
	URL string `json:"url"`
	// Data is the raw page content.
	Data string `json:"data"`
}
