// Utilities for importing a session from a copied browser cURL command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlHeaders holds headers and cookies parsed from a cURL command, as copied
// from the browser's network inspector on an authenticated dashboard request.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlFile reads a file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts headers and cookies from a cURL command. Cookies
// arrive either through -b or a Cookie header; both land in the Cookie field.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := strings.ReplaceAll(string(data), "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	parsed := &CurlHeaders{Headers: make(map[string]string)}
	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := splitHeaderLine(firstGroup(match))
		if !ok {
			continue
		}
		if strings.EqualFold(key, "cookie") {
			parsed.Cookie = value
		} else {
			parsed.Headers[key] = value
		}
	}

	if match := curlCookieRegex.FindStringSubmatch(curlCmd); match != nil {
		parsed.Cookie = firstGroup(match)
	}

	if len(parsed.Headers) == 0 && parsed.Cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}
	return parsed, nil
}

// BearerToken extracts the access token from the Authorization header,
// empty when the command carries none.
func (c *CurlHeaders) BearerToken() string {
	for key, value := range c.Headers {
		if strings.EqualFold(key, "Authorization") {
			return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "Bearer"))
		}
	}
	return ""
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
