package webhook

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxBodyBytes caps the webhook request body.
const MaxBodyBytes = 5 << 20 // 5 MiB

// MaxAttachmentBytes caps a single decoded attachment.
const MaxAttachmentBytes = 10 << 20 // 10 MiB

var (
	ErrNoThreadKey        = errors.New("no thread key in recipient addresses")
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
	ErrAttachmentType     = errors.New("attachment type not allowed")
)

// allowedAttachmentTypes is the MIME allow-list for inbound attachments:
// images, PDF, common office documents and plain text. Everything else,
// executables in particular, is dropped.
var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// reply+<key>@reply.example.fr
var threadKeyRe = regexp.MustCompile(`^reply\+([A-Za-z0-9_-]{8,64})@`)

// ExtractThreadKey finds the conversation thread key in the recipient list.
// Each conversation thread gets a unique reply address; the key embedded in
// it routes the message back to its thread.
func ExtractThreadKey(to []string, replyDomain string) (string, error) {
	for _, addr := range to {
		addr = strings.ToLower(strings.TrimSpace(addr))
		// strip display name form "Name <addr>"
		if start := strings.LastIndex(addr, "<"); start != -1 {
			addr = strings.TrimSuffix(addr[start+1:], ">")
		}
		if replyDomain != "" && !strings.HasSuffix(addr, "@"+strings.ToLower(replyDomain)) {
			continue
		}
		if m := threadKeyRe.FindStringSubmatch(addr); m != nil {
			return m[1], nil
		}
	}
	return "", ErrNoThreadKey
}

// DecodedAttachment is a validated, decoded attachment ready for storage.
type DecodedAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DecodeAttachments validates and decodes the payload attachments. A
// disallowed MIME type or oversized attachment rejects the whole message so
// the provider retries nothing silently.
func DecodeAttachments(attachments []InboundAttachment) ([]DecodedAttachment, error) {
	if len(attachments) == 0 {
		return nil, nil
	}

	decoded := make([]DecodedAttachment, 0, len(attachments))
	for _, att := range attachments {
		contentType := normalizeContentType(att.ContentType)
		if !allowedAttachmentTypes[contentType] {
			return nil, fmt.Errorf("%w: %s (%s)", ErrAttachmentType, att.Filename, contentType)
		}

		// base64 inflates by 4/3, check before decoding
		if len(att.Content) > MaxAttachmentBytes*4/3+4 {
			return nil, fmt.Errorf("%w: %s", ErrAttachmentTooLarge, att.Filename)
		}
		data, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return nil, fmt.Errorf("decode attachment %s: %w", att.Filename, err)
		}
		if len(data) > MaxAttachmentBytes {
			return nil, fmt.Errorf("%w: %s", ErrAttachmentTooLarge, att.Filename)
		}

		decoded = append(decoded, DecodedAttachment{
			Filename:    sanitizeFilename(att.Filename),
			ContentType: contentType,
			Data:        data,
		})
	}
	return decoded, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	// strip parameters like "; charset=utf-8"
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._\-]`)

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "piece-jointe"
	}
	// strip any path component
	if idx := strings.LastIndexAny(name, "/\\"); idx != -1 {
		name = name[idx+1:]
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(name) > 128 {
		name = name[len(name)-128:]
	}
	return name
}
