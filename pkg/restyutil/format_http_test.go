package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestFormatHttpMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Portal", "sikola")
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, "welcome")
	}))
	defer server.Close()

	res, err := resty.New().R().
		SetFormData(map[string]string{"login": "D121211001"}).
		Post(server.URL + "/index.php")
	require.NoError(t, err)

	message := FormatHttpMessage(res)
	require.True(t, strings.HasPrefix(message, "---- REQUEST ----"))
	require.Contains(t, message, "POST "+server.URL+"/index.php")
	require.Contains(t, message, "login=D121211001")
	require.Contains(t, message, "202 "+server.URL+"/index.php")
	require.Contains(t, message, "X-Portal: sikola")
	require.True(t, strings.HasSuffix(message, "welcome"))
}

func TestFormatHeadersEmpty(t *testing.T) {
	require.Equal(t, "", formatHeaders(nil))
	require.Equal(t, "", formatRequestBody(nil))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0600))

	now := time.Date(2024, 8, 17, 9, 30, 0, 0, time.UTC)
	output, err := NewFilesystemOutput(dir, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20240817-093000.000"), output.Directory())

	kept, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, "keep me", string(kept))

	output.Write("1", "contents")
	written, err := os.ReadFile(filepath.Join(output.Directory(), "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(written))

	_, err = NewFilesystemOutput(dir, now)
	require.ErrorIs(t, err, os.ErrExist)

	_, err = NewFilesystemOutput(filepath.Join(dir, "notes.txt"), now)
	require.Error(t, err)
}

func TestFormatHttpMessageWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "login page")
	}))
	defer server.Close()

	res, err := resty.New().R().Get(server.URL + "/index.php")
	require.NoError(t, err)

	message := FormatHttpMessage(res)
	require.Contains(t, message, "GET "+server.URL+"/index.php")
	require.True(t, strings.HasSuffix(message, "login page"))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))
}
