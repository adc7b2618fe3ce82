package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sum returns the SHA256 hex digest of content.
func Sum(content []byte) string {
	sum := sha256.Sum256(content)

	return hex.EncodeToString(sum[:])
}

// CalculateDigest computes the SHA256 hex digest of the file at
// path. Returns empty string with no error if the file does not
// exist.
func CalculateDigest(path string) (result string, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	ha := sha256.New()

	if _, err := io.Copy(ha, fi); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// CalculateDigests computes one digest over the paths and the
// contents of every file, in order. A missing file contributes
// its path only.
func CalculateDigests(paths []string) (string, error) {
	const errCtx = "calculating digests"

	ha := sha256.New()

	for _, pa := range paths {
		digest, err := CalculateDigest(pa)
		if err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}

		// hash.Hash writes never fail.
		_, _ = fmt.Fprintf(ha, "%s\x00%s\n", pa, digest)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}
