//go:build darwin

package clipboard

import (
	"fmt"
	"os/exec"
	"strings"
)

func setText(text string) error {
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pbcopy: %w", err)
	}
	return nil
}
