package css

import (
	"context"

	"go.uber.org/zap"
)

// RenameWrapperTag implements Component D. When content is exactly a single
// top-level rule set headed by a selector equal to tagName (e.g. "html"),
// the tag name occurrence is substituted with sentinel and the result is
// returned; otherwise content is returned unchanged. sentinel must itself be
// a valid CSS selector token — it is stripped again by the compile
// adapter's path filter (Component G) once the sentinel has served its
// scoping purpose through the intermediate LESS/CSS pipeline.
func RenameWrapperTag(content, tagName, sentinel string) string {
	if tagName == "" {
		return content
	}
	segs := Segments(content)

	i := firstNonTrivial(segs, 0)
	if i < 0 || segs[i].Kind != SelectorOrStyleProperty || segs[i].Value != tagName {
		return content
	}
	tagIdx := i

	j := firstNonTrivial(segs, i+1)
	if j < 0 || segs[j].Kind != OpenBrace {
		return content
	}

	k := firstNonTrivial(segs, j+1)
	if k < 0 || segs[k].Kind != SelectorOrStyleProperty {
		return content
	}
	l := firstNonTrivial(segs, k+1)
	if l < 0 || segs[l].Kind == StylePropertyColon {
		// A colon right after the inner selector-looking token means it was
		// actually a property, i.e. this isn't a rule set at all.
		return content
	}

	// The wrapper's block must end the file: anything but whitespace or
	// comments after its matching '}' is a second top-level rule set.
	depth := 0
	for m := j; m < len(segs); m++ {
		if segs[m].Kind == OpenBrace {
			depth++
		} else if segs[m].Kind == CloseBrace {
			depth--
			if depth == 0 {
				if rest := firstNonTrivial(segs, m+1); rest >= 0 && segs[rest].Kind != Terminator {
					return content
				}
				break
			}
		}
	}

	tagSeg := segs[tagIdx]
	return content[:tagSeg.Index] + sentinel + content[tagSeg.Index+len(tagSeg.Value):]
}

func firstNonTrivial(segs []Segment, from int) int {
	for i := from; i < len(segs); i++ {
		switch segs[i].Kind {
		case Whitespace, Comment:
			continue
		}
		return i
	}
	return -1
}

// wrapperRenamer is the innermost stage a request sees before the raw file
// reader, running Component D over the freshly-read content.
type wrapperRenamer struct {
	cfg  Config
	next Loader
	log  *zap.Logger
}

func newWrapperRenamer(cfg Config, next Loader) Loader {
	return &wrapperRenamer{cfg: cfg, next: next, log: cfg.logger().Named("css-wrapper-renamer")}
}

func (w *wrapperRenamer) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := w.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	if w.cfg.TagToRemove != "" {
		fc.Content = RenameWrapperTag(fc.Content, w.cfg.TagToRemove, w.cfg.SentinelTag)
	}
	return fc, nil
}
