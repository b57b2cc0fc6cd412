package format

import (
	"net/url"
	"strings"
)

// Digits strips everything but 0-9 from a phone number.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppLink returns the wa.me link for a phone, or "" when it has no digits.
func WhatsAppLink(phone, text string) string {
	d := Digits(phone)
	if d == "" {
		return ""
	}
	link := "https://wa.me/" + d
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link
}
