//go:build !windows

package overlay

// SetPassive is only implemented on Windows.
func SetPassive(_ string, _ bool) error {
	return ErrPassiveUnsupported
}

// ShowPassive is only implemented on Windows.
func ShowPassive(_ string) error {
	return ErrPassiveUnsupported
}
