package curio

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// paramInt64 parses a numeric path parameter.
func paramInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// queryPage reads the ?page= parameter, defaulting to 1.
func queryPage(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// formInt16 parses a small numeric form field, defaulting to 0.
func formInt16(c echo.Context, name string) int16 {
	n, err := strconv.Atoi(c.FormValue(name))
	if err != nil || n < 0 {
		return 0
	}
	return int16(n)
}

// formUint8 parses a taxonomy id form field, defaulting to 0.
func formUint8(c echo.Context, name string) uint8 {
	n, err := strconv.Atoi(c.FormValue(name))
	if err != nil || n < 0 || n > 255 {
		return 0
	}
	return uint8(n)
}
