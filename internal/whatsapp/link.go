// internal/whatsapp/link.go

// Package whatsapp builds wa.me click-to-chat links for the pre-filled
// outreach drafts.
package whatsapp

import (
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// BuildLink returns the click-to-chat URL carrying the draft message.
// The number is optional, without one WhatsApp prompts for a recipient.
// Numbers are normalized to digits only per the wa.me contract.
func BuildLink(number, message string) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString(normalizeNumber(number))

	if message != "" {
		b.WriteString("?text=")
		// Percent-encode spaces, wa.me does not decode '+'.
		b.WriteString(strings.ReplaceAll(url.QueryEscape(message), "+", "%20"))
	}
	return b.String()
}

func normalizeNumber(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
