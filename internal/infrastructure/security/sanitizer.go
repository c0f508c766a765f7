package security

import (
	"net/http"
	"net/url"
	"strings"
)

// Header names whose values never reach the logs.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-functions-key":     true,
	"proxy-authorization": true,
}

// Query parameters whose values never reach the logs. The report endpoint can be
// protected with an Azure function key passed as ?code=.
var sensitiveParams = []string{
	"code",
	"key",
	"token",
	"secret",
	"password",
	"sig",
}

const redactedValue = "[REDACTED]"

// SanitizeHeaders flattens headers, redacting sensitive values.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = redactedValue
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}

// SanitizeURL redacts credentials and sensitive query values from raw. The rest of
// the query is kept as sent, so DD/MM/YYYY dates stay readable. Unparsable input is
// returned with its query dropped.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if idx := strings.IndexByte(raw, '?'); idx >= 0 {
			return raw[:idx]
		}
		return raw
	}

	if u.User != nil {
		u.User = url.User(redactedValue)
	}
	if u.RawQuery == "" {
		return u.String()
	}

	parts := strings.Split(u.RawQuery, "&")
	for i, part := range parts {
		name, _, found := strings.Cut(part, "=")
		if found && isSensitiveParam(name) {
			parts[i] = name + "=" + redactedValue
		}
	}
	u.RawQuery = strings.Join(parts, "&")
	return u.String()
}

func isSensitiveParam(name string) bool {
	name = strings.ToLower(name)
	for _, p := range sensitiveParams {
		if name == p {
			return true
		}
	}
	return false
}
