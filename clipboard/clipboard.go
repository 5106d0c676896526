// Package clipboard copies dictated text to the system clipboard via
// the platform clipboard tool.
package clipboard

// SetText places text on the system clipboard.
func SetText(text string) error {
	return setText(text)
}
