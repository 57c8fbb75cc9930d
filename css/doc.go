// Package css implements the stylesheet transformation pipeline: a
// composable chain of content transformers that inlines imports, compiles
// nested LESS-style blocks to flat CSS, annotates selectors with
// source-location markers, strips an optional scope-restricting wrapper,
// coalesces equal media queries, scopes keyframe identifiers per file,
// minifies the result, and caches it in memory and on disk keyed by the
// last-modified dates of the files that contributed to it.
//
// # Pipeline stages
//
// Every stage implements Loader: given a relative path it returns
// FileContents. Stages compose outermost-first as:
//
//	mediaQueryGrouper → lessCompiler → importFlattener → keyframeScoper →
//	markerInserter → commentStripper → wrapperRenamer → file reader
//
// This order matters: the marker inserter needs comments already gone so
// line counts are stable, wrapper renaming must precede marker insertion or
// a marker would occupy the "first segment" slot a wrapper detector looks
// for, and import flattening must see scoping sentinels already in place.
//
// # Compositions
//
// Two canonical Config values are provided: DefaultConfig (no wrapper
// handling, unconditional marker injection, no media grouping) and
// EnhancedConfig (wrapper detection/stripping, bare-element-skipping marker
// injection, media-query grouping). NewPipeline assembles either into a
// Loader.
//
// # Caching
//
// Cache composes a memory tier and a disk tier behind the same Loader
// contract a request sees; each tier's hits are gated by freshness from a
// LastModifiedRetriever, so a hit on stale content is treated as a miss and the
// pipeline regenerates it.
package css
