//go:build !linux

package volume

import "context"

// MountInfoSource is only implemented on linux; use FileSource elsewhere.
type MountInfoSource struct{}

func NewMountInfoSource() *MountInfoSource {
	return &MountInfoSource{}
}

func (ms *MountInfoSource) Enumerate(ctx context.Context) ([]Entry, error) {
	return nil, ErrUnsupported
}
