package stamper

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Stamps maps stamp keys to their values.
type Stamps map[string]interface{}

// LoadStamps reads workspace status files and merges them
// into a single set; later files override earlier ones.
// Each line is "KEY VALUE" with the first space as
// delimiter. Lines without a space are silently skipped.
func LoadStamps(infoFiles []string) (Stamps, error) {
	const errCtx = "loading stamps"

	stamps := make(Stamps)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		sc := bufio.NewScanner(bytes.NewReader(content))
		for sc.Scan() {
			key, val, ok := strings.Cut(
				strings.TrimSuffix(sc.Text(), "\r"), " ",
			)
			if ok && key != "" {
				stamps[key] = val
			}
		}

		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf(
				"%s: scanning %s: %w", errCtx, sf, err,
			)
		}
	}

	return stamps, nil
}

// Expand substitutes {KEY} placeholders in format. Unknown
// keys are preserved as-is.
func (st Stamps) Expand(format string) string {
	return fasttemplate.ExecuteStringStd(
		format, "{", "}", map[string]interface{}(st),
	)
}

// Locals returns a copy of the stamps suitable for a
// template data context.
func (st Stamps) Locals() map[string]any {
	out := make(map[string]any, len(st))
	for key, val := range st {
		out[key] = val
	}

	return out
}
