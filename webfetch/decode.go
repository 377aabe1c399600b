package webfetch

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// decodeBody replaces a gzip or br encoded res.Body with the decoded data.
// The Content-Encoding header is removed and Content-Length updated.
func decodeBody(res *http.Response) error {
	if res.Body == nil {
		return nil
	}

	var reader io.Reader
	switch res.Header.Get("Content-Encoding") {
	case "gzip":
		gzipReader, err := gzip.NewReader(res.Body)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	case "br":
		reader = brotli.NewReader(res.Body)
	default:
		return nil
	}
	defer res.Body.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading %s content: %w", res.Header.Get("Content-Encoding"), err)
	}

	res.Body = io.NopCloser(bytes.NewReader(decoded))
	res.ContentLength = int64(len(decoded))
	res.Header.Set("Content-Length", fmt.Sprintf("%d", len(decoded)))
	res.Header.Del("Content-Encoding")
	return nil
}
