package css

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type mediaGroupState int

const (
	mediaOutside mediaGroupState = iota
	mediaHeader
	mediaBody
)

// GroupMediaQueries implements Component H: it re-parses already-minified
// content as a flat token stream and pulls every top-level @media block's
// body out into an insertion-ordered group keyed by the block's exact
// header text (the "@media ..." text up to its '{'), coalescing groups with
// byte-identical headers. Everything outside a @media block is emitted
// first, unchanged and in its original relative order; the groups follow,
// each written once as "<header>{<body>}".
func GroupMediaQueries(content string) string {
	sc := NewScanner(content)

	var outside strings.Builder
	var order []string
	bodies := map[string]*strings.Builder{}

	state := mediaOutside
	var header strings.Builder
	depth := 0

	for {
		seg, ok := sc.Next()
		if !ok || seg.Kind == Terminator {
			break
		}

		switch state {
		case mediaOutside:
			if seg.Kind == Other && strings.EqualFold(seg.Value, "@media") {
				state = mediaHeader
				header.Reset()
				header.WriteString(seg.Value)
				continue
			}
			outside.WriteString(seg.Value)

		case mediaHeader:
			if seg.Kind == OpenBrace {
				depth = 1
				state = mediaBody
				key := header.String()
				if _, seen := bodies[key]; !seen {
					order = append(order, key)
					bodies[key] = &strings.Builder{}
				}
				continue
			}
			header.WriteString(seg.Value)

		case mediaBody:
			switch seg.Kind {
			case OpenBrace:
				depth++
			case CloseBrace:
				depth--
				if depth == 0 {
					state = mediaOutside
					continue
				}
			}
			bodies[header.String()].WriteString(seg.Value)
		}
	}

	var out strings.Builder
	out.WriteString(outside.String())
	for _, key := range order {
		out.WriteString(key)
		out.WriteString("{")
		out.WriteString(bodies[key].String())
		out.WriteString("}")
	}
	return out.String()
}

type mediaGrouper struct {
	next Loader
	log  *zap.Logger
}

func newMediaGrouper(cfg Config, next Loader) Loader {
	return &mediaGrouper{next: next, log: cfg.logger().Named("css-media-grouper")}
}

func (g *mediaGrouper) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := g.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	fc.Content = GroupMediaQueries(fc.Content)
	return fc, nil
}
