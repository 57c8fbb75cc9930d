package css

import (
	"context"
	"fmt"
	"hash/fnv"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// keyframePrefix derives Component F's scope prefix from a relative path:
// the base filename with its extension stripped, run through the same
// sanitize transform as a marker ident. A path that sanitizes to nothing
// (e.g. an all-symbol name) falls back to a stable hash of the full path so
// every file still gets a distinct, non-empty prefix.
func keyframePrefix(relativePath string) string {
	base := path.Base(relativePath)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if ident := sanitizeIdent(base); ident != "" {
		return ident
	}
	h := fnv.New32a()
	h.Write([]byte(relativePath))
	return fmt.Sprintf("scope%d", h.Sum32())
}

// isAnimationPropertyName reports whether name names a property whose value
// may reference a @keyframes identifier: animation, animation-name, or any
// vendor-prefixed variant of either (-webkit-animation-name, and so on).
func isAnimationPropertyName(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case lower == "animation", lower == "animation-name":
		return true
	case strings.HasSuffix(lower, "-animation"), strings.HasSuffix(lower, "-animation-name"):
		return true
	}
	return false
}

// ScopeKeyframes implements Component F. A @keyframes block nested inside
// another rule set is renamed to "<prefix>_<name>", where prefix comes from
// relativePath; a top-level @keyframes block is left untouched. Every Value
// token that follows an animation/animation-name property and exactly
// matches a renamed identifier is rewritten to the same prefixed form.
func ScopeKeyframes(content, relativePath string) string {
	segs := Segments(content)

	type replacement struct {
		index  int
		length int
		text   string
	}
	var repls []replacement
	renamed := map[string]string{}

	depth := 0
	for i, seg := range segs {
		switch seg.Kind {
		case OpenBrace:
			depth++
		case CloseBrace:
			if depth > 0 {
				depth--
			}
		case Other:
			if depth < 1 || !strings.EqualFold(seg.Value, "@keyframes") {
				continue
			}
			j := firstNonTrivial(segs, i+1)
			if j < 0 || segs[j].Kind != SelectorOrStyleProperty {
				continue
			}
			name := segs[j].Value
			if _, already := renamed[name]; already {
				continue
			}
			prefixed := keyframePrefix(relativePath) + "_" + name
			renamed[name] = prefixed
			repls = append(repls, replacement{index: segs[j].Index, length: len(name), text: prefixed})
		}
	}

	if len(renamed) > 0 {
		for i, seg := range segs {
			if seg.Kind != SelectorOrStyleProperty || !isAnimationPropertyName(seg.Value) {
				continue
			}
			j := firstNonTrivial(segs, i+1)
			if j < 0 || segs[j].Kind != StylePropertyColon {
				continue
			}
			for k := j + 1; k < len(segs); k++ {
				sk := segs[k]
				if sk.Kind == SemiColon || sk.Kind == CloseBrace || sk.Kind == Terminator {
					break
				}
				if sk.Kind != Value {
					continue
				}
				if prefixed, ok := renamed[sk.Value]; ok {
					repls = append(repls, replacement{index: sk.Index, length: len(sk.Value), text: prefixed})
				}
			}
		}
	}

	if len(repls) == 0 {
		return content
	}
	sort.Slice(repls, func(a, b int) bool { return repls[a].index < repls[b].index })

	var b strings.Builder
	b.Grow(len(content) + len(repls)*8)
	cursor := 0
	for _, r := range repls {
		if r.index < cursor {
			continue
		}
		b.WriteString(content[cursor:r.index])
		b.WriteString(r.text)
		cursor = r.index + r.length
	}
	b.WriteString(content[cursor:])
	return b.String()
}

// keyframeScoper is the pipeline stage wrapping ScopeKeyframes.
type keyframeScoper struct {
	next Loader
	log  *zap.Logger
}

func newKeyframeScoper(cfg Config, next Loader) Loader {
	return &keyframeScoper{next: next, log: cfg.logger().Named("css-keyframe-scoper")}
}

func (k *keyframeScoper) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := k.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	fc.Content = ScopeKeyframes(fc.Content, relativePath)
	return fc, nil
}
