package normalize

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// RowHashFromValues computes a stable SHA-256 over the row number and
// the identifying field values, in order, with null separators.
func RowHashFromValues(rowNum int64, values ...string) []byte {
	h := sha256.New()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(rowNum))
	h.Write(buf)
	for _, v := range values {
		h.Write([]byte(strings.TrimSpace(v)))
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}
