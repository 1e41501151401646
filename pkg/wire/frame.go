package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Op identifies a frame operation.
type Op string

// Frame operations.
const (
	// OpHello is the client handshake: current URL, hash, and the
	// base path the client saw at page load.
	OpHello Op = "hello"

	// OpLocation reports a client-side location change (popstate,
	// hashchange).
	OpLocation Op = "location"

	// OpURLPush tells the client to push a new history entry.
	OpURLPush Op = "url_push"

	// OpURLReplace tells the client to replace the current entry.
	OpURLReplace Op = "url_replace"

	// OpNavigate tells the client to perform a full navigation.
	OpNavigate Op = "nav"

	// OpHash tells the client to set the hash fragment only.
	OpHash Op = "hash"
)

// MaxFrameSize bounds the encoded size of a frame in bytes. Frames
// carry a single URL at most, so anything larger is rejected.
const MaxFrameSize = 16 << 10

// Frame is a single protocol message. Unused fields are omitted on
// the wire.
type Frame struct {
	Op   Op     `json:"op"`
	URL  string `json:"url,omitempty"`
	Hash string `json:"hash,omitempty"`
	Base string `json:"base,omitempty"`
}

// Frame errors.
var (
	ErrFrameTooLarge = errors.New("wire: frame exceeds size limit")
	ErrUnknownOp     = errors.New("wire: unknown op")
	ErrEmptyFrame    = errors.New("wire: empty frame")
)

// NewURLPush builds a url_push frame.
func NewURLPush(url string) Frame {
	return Frame{Op: OpURLPush, URL: url}
}

// NewURLReplace builds a url_replace frame.
func NewURLReplace(url string) Frame {
	return Frame{Op: OpURLReplace, URL: url}
}

// NewNavigate builds a nav frame for a full navigation.
func NewNavigate(url string) Frame {
	return Frame{Op: OpNavigate, URL: url}
}

// NewHash builds a hash frame. The value includes the leading "#";
// an empty value clears the fragment.
func NewHash(hash string) Frame {
	return Frame{Op: OpHash, Hash: hash}
}

// Encode serializes a frame, enforcing MaxFrameSize.
func Encode(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	return data, nil
}

// Decode parses a frame, enforcing MaxFrameSize and a known op.
func Decode(data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if len(data) > MaxFrameSize {
		return Frame{}, ErrFrameTooLarge
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("wire: decode: %w", err)
	}

	switch f.Op {
	case OpHello, OpLocation, OpURLPush, OpURLReplace, OpNavigate, OpHash:
		return f, nil
	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownOp, f.Op)
	}
}
