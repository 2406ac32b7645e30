package service

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxCustomKeyLength = 20

// reservedKeys are first path segments taken by routes; a link under one of
// them could never be resolved.
var reservedKeys = map[string]bool{
	"activate":   true,
	"admin":      true,
	"api":        true,
	"auth":       true,
	"deactivate": true,
	"ping":       true,
	"qrcode":     true,
}

func validateTargetURL(raw string) error {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	if u.Hostname() == "" {
		return ErrInvalidURL
	}

	return nil
}

func validateCustomKey(key string) error {
	if utf8.RuneCountInString(key) > maxCustomKeyLength {
		return ErrTooLong
	}

	for i := 0; i < len(key); i++ {
		if !isAlphanumeric(key[i]) {
			return ErrInvalidCharacters
		}
	}

	if reservedKeys[strings.ToLower(key)] {
		return ErrReservedKey
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
