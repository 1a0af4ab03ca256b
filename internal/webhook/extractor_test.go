package webhook

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestExtractThreadKey(t *testing.T) {
	cases := []struct {
		name    string
		to      []string
		domain  string
		want    string
		wantErr bool
	}{
		{
			name:   "plain reply address",
			to:     []string{"reply+abc123def456@reply.example.fr"},
			domain: "reply.example.fr",
			want:   "abc123def456",
		},
		{
			name:   "display name form",
			to:     []string{"Seido <reply+abc123def456@reply.example.fr>"},
			domain: "reply.example.fr",
			want:   "abc123def456",
		},
		{
			name:   "mixed recipients",
			to:     []string{"gestionnaire@agence.fr", "reply+k1k2k3k4k5@reply.example.fr"},
			domain: "reply.example.fr",
			want:   "k1k2k3k4k5",
		},
		{
			name:    "wrong domain",
			to:      []string{"reply+abc123def456@other.example.com"},
			domain:  "reply.example.fr",
			wantErr: true,
		},
		{
			name:    "no reply address",
			to:      []string{"someone@example.fr"},
			domain:  "reply.example.fr",
			wantErr: true,
		},
		{
			name:    "key too short",
			to:      []string{"reply+abc@reply.example.fr"},
			domain:  "reply.example.fr",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractThreadKey(tc.to, tc.domain)
			if tc.wantErr {
				if !errors.Is(err, ErrNoThreadKey) {
					t.Fatalf("err = %v, want ErrNoThreadKey", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractThreadKey: %v", err)
			}
			if got != tc.want {
				t.Fatalf("key = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeAttachments_AllowsWhitelistedTypes(t *testing.T) {
	content := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	attachments := []InboundAttachment{
		{Filename: "photo.jpg", ContentType: "image/jpeg", Content: content},
		{Filename: "devis.pdf", ContentType: "application/pdf; name=devis.pdf", Content: content},
	}

	decoded, err := DecodeAttachments(attachments)
	if err != nil {
		t.Fatalf("DecodeAttachments: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(decoded))
	}
	if decoded[1].ContentType != "application/pdf" {
		t.Fatalf("content type parameters not stripped: %q", decoded[1].ContentType)
	}
}

func TestDecodeAttachments_RejectsExecutable(t *testing.T) {
	attachments := []InboundAttachment{
		{Filename: "malware.exe", ContentType: "application/x-msdownload", Content: base64.StdEncoding.EncodeToString([]byte("MZ"))},
	}
	if _, err := DecodeAttachments(attachments); !errors.Is(err, ErrAttachmentType) {
		t.Fatalf("err = %v, want ErrAttachmentType", err)
	}
}

func TestDecodeAttachments_RejectsOversized(t *testing.T) {
	big := strings.Repeat("A", (MaxAttachmentBytes*4/3)+100)
	attachments := []InboundAttachment{
		{Filename: "huge.pdf", ContentType: "application/pdf", Content: big},
	}
	if _, err := DecodeAttachments(attachments); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("err = %v, want ErrAttachmentTooLarge", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		"rapport final.pdf":    "rapport_final.pdf",
		"":                     "piece-jointe",
		`C:\temp\facture.xlsx`: "facture.xlsx",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
