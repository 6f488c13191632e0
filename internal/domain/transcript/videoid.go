package transcript

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID достает 11-символьный идентификатор из ссылки на YouTube.
// Поддерживаются watch?v=, youtu.be/, /embed/, /shorts/, /live/, хосты m. и music.,
// а также голый идентификатор.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "music.")

	var id string
	switch host {
	case "youtu.be":
		id = firstPathSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com":
		path := strings.TrimSuffix(u.Path, "/")
		switch {
		case path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "/embed/"),
			strings.HasPrefix(path, "/shorts/"),
			strings.HasPrefix(path, "/live/"),
			strings.HasPrefix(path, "/v/"):
			parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
			if len(parts) > 1 {
				id = parts[1]
			}
		}
	default:
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, u.Hostname())
	}

	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, raw)
	}
	return id, nil
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
