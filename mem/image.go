package mem

import (
	"fmt"

	"github.com/spf13/afero"
)

// LoadImage copies the content of a raw file into the device, starting from
// the byte address. It returns the number of bytes loaded.
func LoadImage(fs afero.Fs, path string, d *NativeDevice, byteAddr uint32) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, fmt.Errorf("load image %s: %w", path, err)
	}

	if uint64(len(data)) > d.storage.Capacity() {
		return 0, fmt.Errorf("load image %s: %w", path, ErrOutOfRange)
	}

	d.Poke(byteAddr, data)

	return len(data), nil
}

// DumpImage writes n bytes of the device, starting from the byte address,
// into a raw file.
func DumpImage(fs afero.Fs, path string, d *NativeDevice, byteAddr uint32, n int) error {
	err := afero.WriteFile(fs, path, d.Peek(byteAddr, n), 0o644)
	if err != nil {
		return fmt.Errorf("dump image %s: %w", path, err)
	}

	return nil
}
