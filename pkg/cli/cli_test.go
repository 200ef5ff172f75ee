package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonypate54/familynest/pkg/types"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := outWriter
	outWriter = buf
	t.Cleanup(func() {
		outWriter = prev
		output = OutputTable
	})
	return buf
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]interface{}
}

// fakeGateway answers every request with the given envelope data and records what it saw
func fakeGateway(t *testing.T, status int, envelope map[string]interface{}) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		seen = append(seen, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(envelope)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { output = OutputTable })

	require.NoError(t, SetOutputFormat("JSON"))
	assert.True(t, IsStructuredOutput())
	require.NoError(t, SetOutputFormat("yml"))
	assert.Equal(t, OutputYAML, output)
	require.NoError(t, SetOutputFormat(""))
	assert.False(t, IsStructuredOutput())
	assert.Error(t, SetOutputFormat("xml"))
}

func TestPrintStructured(t *testing.T) {
	buf := captureOutput(t)

	output = OutputTable
	assert.False(t, PrintStructured(map[string]int{"a": 1}))
	assert.Empty(t, buf.String())

	output = OutputYAML
	assert.True(t, PrintStructured(types.Resource{Identity: "/a.pdf", DisplayName: "a.pdf"}))
	assert.Contains(t, buf.String(), "id: /a.pdf")
	assert.Contains(t, buf.String(), "name: a.pdf")
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))

	err := fmt.Errorf("listing: %w", types.NewResourceError(types.ErrCodeSessionBusy, "session abc still open", nil))
	assert.Equal(t, "Another picker session is already open (session abc still open)", FormatError(err))

	unknown := types.NewResourceError(types.ErrorCode("WEIRD"), "odd", nil)
	assert.Equal(t, "odd", FormatError(unknown))

	assert.Equal(t, "a: d", FormatError(errors.New("error: a: b: c: d")))
}

func TestGetErrorSuggestions(t *testing.T) {
	assert.Nil(t, GetErrorSuggestions(nil))
	assert.NotEmpty(t, GetErrorSuggestions(types.NewPermissionDeniedError(types.KindPhoto)))
	assert.NotEmpty(t, GetErrorSuggestions(errors.New("failed to reach gateway: connection refused")))
	assert.Nil(t, GetErrorSuggestions(errors.New("something else")))
}

func TestFormatBytesAndTruncate(t *testing.T) {
	assert.Equal(t, "-", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "25.0 MiB", FormatBytes(25*1024*1024))

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestListCommand(t *testing.T) {
	srv, seen := fakeGateway(t, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": []map[string]interface{}{
			{"id": "catalog://images/1", "identity_kind": "catalog", "name": "beach.jpg", "size": 2048, "mime_type": "image/jpeg", "path": "/media/beach.jpg"},
		},
	})
	buf := captureOutput(t)

	err := runCommand(t, "list", "--gateway", srv.URL, "--token", "secret", "--kind", "photo", "--source", "catalog", "-o", "json")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/resources", req.Path)
	assert.Contains(t, req.Query, "kind=photo")
	assert.Contains(t, req.Query, "source=catalog")
	assert.NotContains(t, req.Query, "max_size_bytes")
	assert.Equal(t, "Bearer secret", req.Auth)

	var got []types.Resource
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "beach.jpg", got[0].DisplayName)
	assert.Equal(t, "/media/beach.jpg", got[0].LocalPath)
}

func TestListCommand_RejectsUnknownKind(t *testing.T) {
	captureOutput(t)

	err := runCommand(t, "list", "--gateway", "127.0.0.1:1", "--kind", "audio", "--source", "catalog", "-o", "table")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeInvalidArgument))
}

func TestResolveCommand_GatewayError(t *testing.T) {
	srv, seen := fakeGateway(t, http.StatusNotFound, map[string]interface{}{
		"success": false,
		"error":   "no catalog row images/9",
		"code":    string(types.ErrCodeNotFound),
	})
	captureOutput(t)

	err := runCommand(t, "resolve", "catalog://images/9", "--gateway", srv.URL, "-o", "table")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeNotFound))

	require.Len(t, *seen, 1)
	assert.Equal(t, "/api/v1/resolve", (*seen)[0].Path)
	assert.Equal(t, "catalog://images/9", (*seen)[0].Body["id"])
}

func TestPickerCompleteCommand(t *testing.T) {
	srv, seen := fakeGateway(t, http.StatusOK, map[string]interface{}{"success": true})
	buf := captureOutput(t)

	err := runCommand(t, "picker", "complete", "sess-1", "file:///tmp/a.pdf", "file:///tmp/b.pdf", "--gateway", srv.URL, "-o", "table")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, "/api/v1/picker/session/sess-1/complete", (*seen)[0].Path)
	assert.Equal(t, []interface{}{"file:///tmp/a.pdf", "file:///tmp/b.pdf"}, (*seen)[0].Body["handles"])
	assert.Contains(t, buf.String(), "completed with 2 handle(s)")
}

func TestPermissionGrantCommand(t *testing.T) {
	srv, seen := fakeGateway(t, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"photo": "granted", "video": "undetermined"},
	})
	buf := captureOutput(t)

	err := runCommand(t, "permission", "grant", "photo", "--gateway", srv.URL, "-o", "json")
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPut, (*seen)[0].Method)
	assert.Equal(t, "/api/v1/permissions/photo", (*seen)[0].Path)
	assert.Equal(t, "granted", (*seen)[0].Body["status"])

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "granted", got["photo"])
}

func TestStatusCommand_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	buf := captureOutput(t)

	err := runCommand(t, "status", "--gateway", addr, "-o", "json")
	require.NoError(t, err)

	var info StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.False(t, info.Healthy)
	assert.NotEmpty(t, info.Error)
	assert.Nil(t, info.Permissions)
}

func TestCatalogIndexCommand(t *testing.T) {
	library := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(library, "beach.jpg"), []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(library, "clip.mp4"), []byte("mp4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(library, "notes.txt"), []byte("txt"), 0o644))

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("FAMILYNEST_CATALOG_DRIVER", types.CatalogDriverSQLite)
	t.Setenv("FAMILYNEST_CATALOG_PATH", filepath.Join(t.TempDir(), "catalog.db"))
	buf := captureOutput(t)

	err := runCommand(t, "catalog", "index", library, "-o", "json")
	require.NoError(t, err)

	var stats struct {
		Indexed int `json:"indexed"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, 2, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestCatalogIndexCommand_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	captureOutput(t)

	err := runCommand(t, "catalog", "index", file, "-o", "table")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeInvalidArgument))
}

func TestStatusStyle(t *testing.T) {
	assert.Equal(t, SuccessStyle.Render("granted"), StatusStyle("granted").Render("granted"))
	assert.Equal(t, ErrorStyle.Render("denied"), StatusStyle("denied").Render("denied"))
	assert.Equal(t, DimStyle.Render("undetermined"), StatusStyle("undetermined").Render("undetermined"))
}
