package flash

import (
	"fmt"
	"strings"
)

// NoContentError reports that no eligible category has any message.
type NoContentError struct {
	Categories []string
}

func (e *NoContentError) Error() string {
	names := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c == "" {
			continue
		}
		names = append(names, c)
	}
	if len(names) == 0 {
		return "no messages in selected categories"
	}
	return fmt.Sprintf("no messages in selected categories (%s)", strings.Join(names, ", "))
}
