// Package camera abstracts the video source used for face capture. A Device
// opens a Stream; a Stream owns tracks that must be stopped when the view
// that opened it goes away.
package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"
)

// JPEGQuality is used for every captured frame.
const JPEGQuality = 90

var (
	ErrStreamStopped = errors.New("camera stream is stopped")
	ErrNoDevice      = errors.New("requested device not found")
)

// Device acquires a live stream. Open fails with the device's own error,
// which callers show to the operator as is.
type Device interface {
	Open(ctx context.Context) (*Stream, error)
}

type Track interface {
	Kind() string
	Stop()
	Stopped() bool
}

// FrameSource grabs the current frame from an open stream.
type FrameSource func(ctx context.Context) (image.Image, error)

type Stream struct {
	mu     sync.Mutex
	tracks []Track
	frame  FrameSource
}

func NewStream(frame FrameSource, tracks ...Track) *Stream {
	return &Stream{tracks: tracks, frame: frame}
}

func (s *Stream) Tracks() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Track(nil), s.tracks...)
}

// Active reports whether any track is still live.
func (s *Stream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tracks {
		if !t.Stopped() {
			return true
		}
	}
	return false
}

// Stop stops every track that is still live.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tracks {
		if !t.Stopped() {
			t.Stop()
		}
	}
}

// Frame returns the current frame of a live stream.
func (s *Stream) Frame(ctx context.Context) (image.Image, error) {
	if !s.Active() {
		return nil, ErrStreamStopped
	}
	return s.frame(ctx)
}

// VideoTrack is the track used by the built-in devices.
type VideoTrack struct {
	mu      sync.Mutex
	stopped bool
}

func (t *VideoTrack) Kind() string {
	return "video"
}

func (t *VideoTrack) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *VideoTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Capture grabs one frame and encodes it as a JPEG data URL.
func Capture(ctx context.Context, s *Stream) (string, error) {
	img, err := s.Frame(ctx)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(img)
}

func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("error encoding frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding frame: %w", err)
	}
	return img, nil
}
