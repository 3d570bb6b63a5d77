package sink

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// CopyToClipboard places the rendered output on the system clipboard with
// color codes stripped. Headless environments without a clipboard provider
// report an error; callers treat that as non-fatal.
func CopyToClipboard(content string) error {
	if err := clipboard.WriteAll(StripANSI(content)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
