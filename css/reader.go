package css

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// FileReader implements the leaf Loader every other stage ultimately wraps:
// it turns a logical relative path into raw FileContents by resolving it
// against Root, decoding whatever byte-level encoding the file declares (or
// a BOM implies) to UTF-8, and stamping LastModified from the filesystem.
//
// Root is served through os.DirFS, the same mechanism fb2/stylesheet.go
// uses to load url()-referenced resources: fs.FS rejects absolute paths and
// any path containing a ".." component before a single byte is read, so
// traversal outside Root is refused at the fs layer rather than by ad hoc
// string checks here.
type FileReader struct {
	Root string
	fsys fs.FS
	log  *zap.Logger
}

func NewFileReader(root string, log *zap.Logger) *FileReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileReader{Root: root, fsys: os.DirFS(root), log: log.Named("css-file-reader")}
}

var atCharsetRule = regexp.MustCompile(`(?i)^@charset\s+"([^"]+)"\s*;\s*`)

// Load reads relativePath from Root, decodes it to UTF-8, and returns it
// with LastModified set to the file's modification time. A resolved path
// that escapes Root, or one that fs.FS otherwise refuses, surfaces as
// ErrBadInput; a missing file surfaces as ErrNotFound.
func (r *FileReader) Load(_ context.Context, relativePath string) (FileContents, error) {
	if relativePath == "" {
		return FileContents{}, fmt.Errorf("%w: empty relative path", ErrBadInput)
	}

	clean := strings.TrimPrefix(relativePath, "/")
	if !fs.ValidPath(clean) {
		return FileContents{}, fmt.Errorf("%w: %s: escapes root", ErrBadInput, relativePath)
	}

	raw, err := fs.ReadFile(r.fsys, clean)
	if err != nil {
		if os.IsNotExist(err) {
			return FileContents{}, fmt.Errorf("%w: %s", ErrNotFound, relativePath)
		}
		return FileContents{}, fmt.Errorf("%w: %s: %v", ErrIOError, relativePath, err)
	}

	info, err := fs.Stat(r.fsys, clean)
	if err != nil {
		return FileContents{}, fmt.Errorf("%w: %s: %v", ErrIOError, relativePath, err)
	}

	content, err := r.decode(raw, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	if content == "" {
		return FileContents{}, fmt.Errorf("%w: %s: empty file", ErrBadInput, relativePath)
	}

	return FileContents{RelativePath: relativePath, LastModified: info.ModTime(), Content: content}, nil
}

// decode first rejects payloads filetype sniffs as a known binary format — a
// stylesheet source should never legitimately be one, so this catches
// misdirected requests before they reach the scanner — then strips a
// UTF-8/UTF-16 byte-order mark or transcodes a leading "@charset"
// declaration to UTF-8.
func (r *FileReader) decode(raw []byte, relativePath string) (string, error) {
	if kind, err := filetype.Match(raw); err == nil && kind != filetype.Unknown {
		return "", fmt.Errorf("%w: %s: looks like %s, not a stylesheet", ErrBadInput, relativePath, kind.MIME.Value)
	}

	switch {
	case hasPrefix(raw, 0xEF, 0xBB, 0xBF):
		raw = raw[3:]
	case hasPrefix(raw, 0xFE, 0xFF):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw, relativePath)
	case hasPrefix(raw, 0xFF, 0xFE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw, relativePath)
	}

	if m := atCharsetRule.FindSubmatch(raw); m != nil {
		enc, err := ianaindex.IANA.Encoding(string(m[1]))
		if err != nil || enc == nil {
			r.log.Warn("unrecognised @charset, treating as UTF-8",
				zap.String("file", relativePath), zap.String("charset", string(m[1])))
		} else {
			decoded, err := decodeWith(enc, raw[len(m[0]):], relativePath)
			if err != nil {
				return "", err
			}
			return decoded, nil
		}
		raw = raw[len(m[0]):]
	}

	return string(raw), nil
}

func decodeWith(enc encoding.Encoding, raw []byte, relativePath string) (string, error) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadInput, relativePath, err)
	}
	return string(decoded), nil
}

func hasPrefix(b []byte, prefix ...byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if b[i] != p {
			return false
		}
	}
	return true
}
