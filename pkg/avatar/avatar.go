// Package avatar turns an image file into the data URL stored in the
// student draft.
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotImage is returned for content that does not sniff as an image.
	ErrNotImage = errors.New("avatar: file is not an image")
	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("avatar: file too large")
	// ErrEmpty is returned for zero-length content.
	ErrEmpty = errors.New("avatar: file is empty")
)

// EncodeFile reads the image at path and returns it as a base64 data URL.
// maxBytes <= 0 disables the size limit.
func EncodeFile(path string, maxBytes int64) (string, error) {
	clean := filepath.Clean(strings.TrimSpace(path))
	f, err := os.Open(clean)
	if err != nil {
		return "", fmt.Errorf("avatar: open: %w", err)
	}
	defer f.Close()

	if maxBytes > 0 {
		if info, err := f.Stat(); err == nil && info.Size() > maxBytes {
			return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), maxBytes)
		}
	}
	return Encode(f, maxBytes)
}

// Encode reads r fully and returns a data URL of the form
// data:<mime>;base64,<payload>.
func Encode(r io.Reader, maxBytes int64) (string, error) {
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("avatar: read: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	var b bytes.Buffer
	b.Grow(len("data:;base64,") + len(mtype.String()) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(baseType(mtype.String()))
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

func isImage(m *mimetype.MIME) bool {
	for cur := m; cur != nil; cur = cur.Parent() {
		if strings.HasPrefix(cur.String(), "image/") {
			return true
		}
	}
	return false
}

// baseType drops mime parameters such as "; charset=utf-8".
func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return strings.TrimSpace(mime[:i])
	}
	return mime
}
