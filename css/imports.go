package css

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ImportDeclaration is one parsed @import statement.
type ImportDeclaration struct {
	RawText  string
	Filename string
	Media    string
}

// importDeclRe matches the five @import shapes §4.C/§6 recognise:
//
//	@import url("X") [M];   @import url('X') [M];   @import url(X) [M];
//	@import "X" [M];        @import 'X' [M];
//
// spacing is flexible and the terminator is ';', '\r', '\n', or end of input.
var importDeclRe = regexp.MustCompile(
	`@import\s+(?:url\(\s*"([^"]*)"\s*\)|url\(\s*'([^']*)'\s*\)|url\(\s*([^)\s'"]+)\s*\)|"([^"]*)"|'([^']*)')\s*([^;\r\n]*?)\s*(;|\r|\n|$)`,
)

func firstGroup(s string, loc []int, indices ...int) string {
	for _, i := range indices {
		a, b := loc[2*i], loc[2*i+1]
		if a >= 0 && b >= 0 {
			return s[a:b]
		}
	}
	return ""
}

// importFlattener is Component C: recursively inlines same-folder @import
// declarations, wrapping the inlined content in @media when the import
// specifies a media condition, and detects circular chains.
type importFlattener struct {
	cfg  Config
	next Loader
	log  *zap.Logger
}

func newImportFlattener(cfg Config, next Loader) Loader {
	return &importFlattener{cfg: cfg, next: next, log: cfg.logger().Named("css-import-flattener")}
}

func (s *importFlattener) Load(ctx context.Context, relativePath string) (FileContents, error) {
	return s.process(ctx, relativePath, nil)
}

func (s *importFlattener) process(ctx context.Context, relativePath string, chain []string) (FileContents, error) {
	if err := ctx.Err(); err != nil {
		return FileContents{}, err
	}
	fc, err := s.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}

	self := path.Clean(relativePath)
	chain = append(append([]string{}, chain...), self)
	dir := path.Dir(relativePath)

	content := fc.Content
	lastModified := fc.LastModified

	for {
		loc := importDeclRe.FindStringSubmatchIndex(content)
		if loc == nil {
			break
		}
		filename := firstGroup(content, loc, 1, 2, 3, 4, 5)
		media := strings.TrimSpace(firstGroup(content, loc, 6))

		if strings.ContainsAny(filename, `/\`) {
			if s.cfg.OnUnsupportedImport == ImportPolicyRaise {
				return FileContents{}, wrapErr("css-import-flattener", relativePath,
					fmt.Errorf("%w: %q", ErrUnsupportedImport, filename))
			}
			s.log.Warn("unsupported import elided", zap.String("file", relativePath), zap.String("target", filename))
			content = content[:loc[0]] + content[loc[1]:]
			continue
		}

		target := path.Clean(path.Join(dir, filename))
		if containsPath(chain, target) {
			if s.cfg.OnCircularImport == ImportPolicyRaise {
				return FileContents{}, wrapErr("css-import-flattener", relativePath,
					fmt.Errorf("%w: %q", ErrCircularImport, filename))
			}
			s.log.Warn("circular import elided", zap.String("file", relativePath), zap.String("target", filename))
			content = content[:loc[0]] + content[loc[1]:]
			continue
		}

		imported, err := s.process(ctx, path.Join(dir, filename), chain)
		if err != nil {
			return FileContents{}, err
		}
		if imported.LastModified.After(lastModified) {
			lastModified = imported.LastModified
		}

		importedContent := imported.Content
		if media != "" {
			importedContent = "@media " + media + " {" + importedContent + "}"
		}
		content = content[:loc[0]] + importedContent + content[loc[1]:]
	}

	return FileContents{RelativePath: relativePath, LastModified: lastModified, Content: content}, nil
}

func containsPath(chain []string, p string) bool {
	for _, c := range chain {
		if c == p {
			return true
		}
	}
	return false
}
