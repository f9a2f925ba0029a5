package main

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)
	apiKeyPattern   = regexp.MustCompile(`\bsk_(live|test)_[A-Za-z0-9_-]{43}`)
)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// redactKey masks the secret part of plaintext API keys in s.
func redactKey(s string) string {
	return apiKeyPattern.ReplaceAllString(s, "sk_${1}_[redacted]")
}

// sanitizeError renders err with every occurrence of secrets and plaintext
// API keys redacted.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	msg = passwordPattern.ReplaceAllString(msg, "password=redacted")
	return redactKey(msg)
}
