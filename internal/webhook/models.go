package webhook

// InboundAttachment is one email attachment as posted by the provider.
// Content is base64-encoded.
type InboundAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// InboundEmail is the parsed-email payload the provider posts after
// receiving a message on the reply domain.
type InboundEmail struct {
	MessageID   string              `json:"messageId"`
	From        string              `json:"from"`
	To          []string            `json:"to"`
	Subject     string              `json:"subject"`
	Text        string              `json:"text"`
	HTML        string              `json:"html"`
	Attachments []InboundAttachment `json:"attachments"`
}
