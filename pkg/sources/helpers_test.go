package sources

import (
	"regexp"
	"testing"

	"github.com/anthonypate54/familynest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple text", "hello world", "hello_world"},
		{"keeps hyphens and dots", "file-name.txt", "file-name.txt"},
		{"path separators", "a/b\\c.pdf", "a_b_c.pdf"},
		{"one for one", "a  b", "a__b"},
		{"unicode characters", "Café.jpg", "Caf_.jpg"},
		{"emoji", "🔥.png", "_.png"},
		{"empty string", "", "Unknown"},
		{"dot", ".", "_"},
		{"dot dot", "..", "__"},
		{"underscores are replaced too", "a_b", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Regexp(t, safeName, got)
		})
	}
}

func TestMimeTypeForExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeTypeForExtension("JPG"))
	assert.Equal(t, "image/jpeg", MimeTypeForExtension(".jpeg"))
	assert.Equal(t, "image/heic", MimeTypeForName("IMG_0001.HEIC"))
	assert.Equal(t, "video/quicktime", MimeTypeForName("clip.mov"))
	assert.Equal(t, "video/x-m4v", MimeTypeForName("clip.m4v"))
	assert.Equal(t, "application/pdf", MimeTypeForName("doc.pdf"))
	assert.Equal(t, "text/plain", MimeTypeForName("notes.txt"))
	assert.Equal(t, types.DefaultMimeType, MimeTypeForName("archive.zip"))
	assert.Equal(t, types.DefaultMimeType, MimeTypeForName("noext"))
}

func TestMatchesKind(t *testing.T) {
	assert.True(t, MatchesKind("a.JPG", types.KindPhoto))
	assert.True(t, MatchesKind("a.heic", types.KindPhoto))
	assert.False(t, MatchesKind("a.gif", types.KindPhoto))
	assert.True(t, MatchesKind("a.MOV", types.KindVideo))
	assert.False(t, MatchesKind("a.jpg", types.KindVideo))
	assert.False(t, MatchesKind("jpg", types.KindPhoto))
}

func TestEffectiveMaxSize(t *testing.T) {
	got, err := EffectiveMaxSize(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(26214400), got)

	got, err = EffectiveMaxSize(nil, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)

	zero := int64(0)
	got, err = EffectiveMaxSize(&zero, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	neg := int64(-1)
	_, err = EffectiveMaxSize(&neg, 100)
	assert.True(t, types.IsCode(err, types.ErrCodeInvalidArgument))
}
