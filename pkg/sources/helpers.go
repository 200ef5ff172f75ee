package sources

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anthonypate54/familynest/pkg/types"
)

// DefaultMaxSizeBytes is the listing ceiling when neither the request nor
// config provides one (25 MiB).
const DefaultMaxSizeBytes int64 = 25 * 1024 * 1024

// Extensions the cloud container walk accepts per kind, lowercase without dot.
var (
	PhotoExtensions = []string{"jpg", "jpeg", "png", "heic"}
	VideoExtensions = []string{"mp4", "mov", "m4v"}
)

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"heic": "image/heic",
	"heif": "image/heif",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"m4v":  "video/x-m4v",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"3gp":  "video/3gpp",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"wav":  "audio/wav",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"json": "application/json",
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// MimeTypeForExtension maps a file extension (with or without dot, any case)
// to a MIME type, defaulting to application/octet-stream.
func MimeTypeForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return types.DefaultMimeType
}

// MimeTypeForName is MimeTypeForExtension applied to a file name.
func MimeTypeForName(name string) string {
	return MimeTypeForExtension(Extension(name))
}

// ExtensionsFor returns the cloud walk allow-list for kind.
func ExtensionsFor(kind types.Kind) []string {
	if kind == types.KindVideo {
		return VideoExtensions
	}
	return PhotoExtensions
}

// MatchesKind reports whether name carries an allow-listed extension for kind.
func MatchesKind(name string, kind types.Kind) bool {
	ext := Extension(name)
	for _, allowed := range ExtensionsFor(kind) {
		if ext == allowed {
			return true
		}
	}
	return false
}

// EffectiveMaxSize picks the listing ceiling: an explicit request value wins,
// then the configured default, then DefaultMaxSizeBytes.
func EffectiveMaxSize(requested *int64, configured int64) (int64, error) {
	if requested != nil {
		if *requested < 0 {
			return 0, types.NewInvalidArgumentError(fmt.Sprintf("max_size_bytes must be >= 0, got %d", *requested))
		}
		return *requested, nil
	}
	if configured > 0 {
		return configured, nil
	}
	return DefaultMaxSizeBytes, nil
}

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with an
// underscore, one for one. The result is always safe to join under a
// directory: empty input and the "." and ".." names are rewritten.
func SanitizeFilename(s string) string {
	if s == "" {
		return types.DefaultDisplayName
	}

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-' || r == '.':
			result.WriteRune(r)
		default:
			result.WriteRune('_')
		}
	}

	out := result.String()
	if out == "." || out == ".." {
		return strings.Repeat("_", len(out))
	}
	return out
}
