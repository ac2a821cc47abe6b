package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"time"
)

// SnapshotDevice reads frames from an HTTP snapshot endpoint, as exposed by
// most IP cameras. Open probes the endpoint once so a dead camera is
// reported when the view asks for it rather than at capture time.
type SnapshotDevice struct {
	URL    string
	Client *http.Client
}

func NewSnapshotDevice(url string) *SnapshotDevice {
	return &SnapshotDevice{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (d *SnapshotDevice) Open(ctx context.Context) (*Stream, error) {
	if _, err := d.snapshot(ctx); err != nil {
		return nil, err
	}
	return NewStream(d.snapshot, &VideoTrack{}), nil
}

func (d *SnapshotDevice) snapshot(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera unavailable: snapshot returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("camera unavailable: %w", err)
	}
	return decode(data)
}

// FileDevice serves a still image from disk as every frame.
type FileDevice struct {
	Path string
}

func (d FileDevice) Open(ctx context.Context) (*Stream, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("camera unavailable: %w", err)
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	return NewStream(func(context.Context) (image.Image, error) { return img, nil }, &VideoTrack{}), nil
}

// NoDevice is used when no camera is configured.
type NoDevice struct{}

func (NoDevice) Open(ctx context.Context) (*Stream, error) {
	return nil, ErrNoDevice
}
