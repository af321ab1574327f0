// Package netx holds plain-HTTP helpers used next to the gRPC API, such as
// fetching objects through presigned storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxDownloadSize caps DownloadPresigned bodies.
const MaxDownloadSize = 64 << 20

// DownloadPresigned fetches url with a plain GET and returns the body. Any
// status other than 200 is an error carrying the storage's reply.
func DownloadPresigned(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDownloadSize {
		return nil, fmt.Errorf("download failed: object larger than %d bytes", MaxDownloadSize)
	}
	return body, nil
}
