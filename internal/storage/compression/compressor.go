// Package compression frames account payloads with an optional block
// compression. Every frame starts with a one-byte method tag so payloads
// written under one setting stay readable after the setting changes.
package compression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Frame method tags
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

// ErrCorruptFrame is returned for frames that cannot be decoded
var ErrCorruptFrame = errors.New("corrupt compression frame")

// Compressor encodes and decodes payload frames.
type Compressor interface {
	// Name returns the name of the compression algorithm.
	Name() string

	// Compress frames data.
	Compress(data []byte) ([]byte, error)

	// Decompress decodes a frame produced by any registered compressor.
	Decompress(frame []byte) ([]byte, error)
}

// Factory is a function that creates a new compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register registers a compressor factory with the given name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor instance for the given name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}
	return factory(), nil
}

// Available returns the sorted names of registered compressors.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("none", func() Compressor { return &NoCompressor{} })
	Register("lz4", func() Compressor { return &LZ4Compressor{} })
}

// decode dispatches on the frame tag
func decode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrCorruptFrame
	}
	switch frame[0] {
	case tagRaw:
		out := make([]byte, len(frame)-1)
		copy(out, frame[1:])
		return out, nil
	case tagLZ4:
		return decodeLZ4(frame[1:])
	default:
		return nil, fmt.Errorf("%w: method %d", ErrCorruptFrame, frame[0])
	}
}

func rawFrame(data []byte) []byte {
	out := make([]byte, 1+len(data))
	out[0] = tagRaw
	copy(out[1:], data)
	return out
}

// NoCompressor stores payloads as they are.
type NoCompressor struct{}

func (c *NoCompressor) Name() string { return "none" }

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return rawFrame(data), nil
}

func (c *NoCompressor) Decompress(frame []byte) ([]byte, error) {
	return decode(frame)
}
