//go:build !linux && !darwin

package clipboard

import "errors"

func setText(text string) error {
	return errors.New("clipboard is not supported on this platform")
}
