package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

// newProgress returns a stage observer writing to w. On a terminal each
// stage rewrites a single status line; elsewhere one line is printed per
// finished stage.
func newProgress(w io.Writer) func(driving.StageEvent) {
	tty := isTerminal(w)
	return func(ev driving.StageEvent) {
		prefix := fmt.Sprintf("[%d/%d] %s", ev.Index+1, ev.Total, ev.Stage)
		switch {
		case !ev.Done:
			if tty {
				fmt.Fprintf(w, "\r\033[K%s: running...", prefix)
			}
		case ev.Err != nil:
			fmt.Fprintf(w, "%s%s: failed\n", lineStart(tty), prefix)
		case ev.Cached:
			fmt.Fprintf(w, "%s%s: done (cached)\n", lineStart(tty), prefix)
		default:
			fmt.Fprintf(w, "%s%s: done\n", lineStart(tty), prefix)
		}
	}
}

func lineStart(tty bool) string {
	if tty {
		return "\r\033[K"
	}
	return ""
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
