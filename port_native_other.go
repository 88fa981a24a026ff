//go:build !linux

package groundlink

func openNative(name string, cfg ConnectionConfig) (Port, error) {
	return nil, ErrDriverUnavailable
}
