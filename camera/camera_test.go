package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestEncodeDataURL(t *testing.T) {
	url, err := EncodeDataURL(testImage())
	if err != nil {
		t.Fatal(err)
	}
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("unexpected prefix in %q", url[:30])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a jpeg: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestStream_StopStopsEveryTrackOnce(t *testing.T) {
	a, b := &VideoTrack{}, &VideoTrack{}
	s := NewStream(func(context.Context) (image.Image, error) { return testImage(), nil }, a, b)

	if !s.Active() {
		t.Fatal("new stream should be active")
	}
	s.Stop()
	if !a.Stopped() || !b.Stopped() || s.Active() {
		t.Error("all tracks should be stopped")
	}
	if _, err := Capture(context.Background(), s); !errors.Is(err, ErrStreamStopped) {
		t.Errorf("expected ErrStreamStopped, got %v", err)
	}
}

func TestFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s, err := FileDevice{Path: path}.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	if _, err := Capture(context.Background(), s); err != nil {
		t.Errorf("capture failed: %v", err)
	}

	if _, err := (FileDevice{Path: filepath.Join(t.TempDir(), "missing.png")}).Open(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSnapshotDevice(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		jpeg.Encode(w, testImage(), nil)
	}))
	defer srv.Close()

	d := NewSnapshotDevice(srv.URL)
	s, err := d.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Capture(context.Background(), s); err != nil {
		t.Errorf("capture failed: %v", err)
	}
	s.Stop()

	down.Store(true)
	if _, err := d.Open(context.Background()); err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("expected camera error with status, got %v", err)
	}
}

func TestNoDevice(t *testing.T) {
	stream, err := NoDevice{}.Open(context.Background())
	if stream != nil || !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v, %v", stream, err)
	}
	if err.Error() != "requested device not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
