package transport

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClientIsShared(t *testing.T) {
	assert.Same(t, GetHTTPClient(), GetHTTPClient())
}

func TestFetchPlain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,HomeTeam,AwayTeam\n"))
	}))
	defer server.Close()

	data, err := Fetch(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Date,HomeTeam,AwayTeam\n", string(data))
}

func TestFetchGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte("compressed payload"))
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	data, err := Fetch(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "compressed payload", string(data))
}

func TestFetchBrotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		br := brotli.NewWriter(&buf)
		br.Write([]byte("brotli payload"))
		br.Close()
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	data, err := Fetch(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "brotli payload", string(data))
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := Fetch(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestBrotliReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte("round trip"))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	reader, err := NewBrotliReader(io.NopCloser(&buf))
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "round trip", string(data))
}
