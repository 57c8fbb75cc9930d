package css

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FileContents is the immutable value every pipeline stage produces and
// consumes. lastModified is the maximum modification time across every file
// that contributed to content, never a raw per-file timestamp.
type FileContents struct {
	RelativePath string
	LastModified time.Time
	Content      string
}

// Loader is the uniform contract every stage implements: given a relative
// path, return its fully-processed FileContents.
type Loader interface {
	Load(ctx context.Context, relativePath string) (FileContents, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context, relativePath string) (FileContents, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, relativePath string) (FileContents, error) {
	return f(ctx, relativePath)
}

// Config parameterises one pipeline composition. Two canonical values,
// DefaultConfig and EnhancedConfig, are provided by NewDefaultConfig and
// NewEnhancedConfig; callers may also build a bespoke Config directly.
type Config struct {
	// TagToRemove is the outer wrapper selector the wrapper-tag renamer
	// looks for (commonly "html"). Empty disables wrapper handling.
	TagToRemove string
	// SentinelTag replaces TagToRemove when found; it must be a valid CSS
	// selector token and is stripped again by the compile adapter's path
	// filter. Ignored when TagToRemove is empty.
	SentinelTag string

	// MarkerInjection selects which selectors receive an injected
	// source-location marker.
	MarkerInjection MarkerInjectionMode

	// GroupMediaQueries enables the media-query grouper stage.
	GroupMediaQueries bool

	// OnCircularImport and OnUnsupportedImport govern the import
	// flattener's behaviour on the two conditions it can detect.
	OnCircularImport    ImportPolicy
	OnUnsupportedImport ImportPolicy

	// OnCompilerError governs whether a LESS engine error is raised or
	// swallowed with the partial output returned.
	OnCompilerError CompilerErrorPolicy

	// InvalidCacheBehaviour governs how the disk cache tier reacts to a
	// cache file that fails to parse.
	InvalidCacheBehaviour InvalidCacheBehaviour

	// LessEngine compiles flattened nested-block content to flat CSS. If
	// nil, NewPipeline installs the built-in default engine.
	LessEngine LessEngine

	// Logger receives a named child logger per stage. If nil, a no-op
	// logger is used.
	Logger *zap.Logger
}

// NewDefaultConfig returns the "default" canonical composition from §4.L:
// no wrapper handling, markers on every selector, no media grouping.
func NewDefaultConfig() Config {
	return Config{
		MarkerInjection:       MarkerInjectionAllSelectors,
		GroupMediaQueries:     false,
		OnCircularImport:      ImportPolicyRaise,
		OnUnsupportedImport:   ImportPolicyRaise,
		OnCompilerError:       CompilerErrorRaise,
		InvalidCacheBehaviour: InvalidCacheDelete,
	}
}

// NewEnhancedConfig returns the "enhanced" canonical composition from §4.L:
// wrapper detection/stripping with sentinel, bare-element-skipping marker
// injection, and media-query grouping.
func NewEnhancedConfig(tagToRemove, sentinelTag string) Config {
	return Config{
		TagToRemove:           tagToRemove,
		SentinelTag:           sentinelTag,
		MarkerInjection:       MarkerInjectionSkipBareElements,
		GroupMediaQueries:     true,
		OnCircularImport:      ImportPolicyRaise,
		OnUnsupportedImport:   ImportPolicyRaise,
		OnCompilerError:       CompilerErrorRaise,
		InvalidCacheBehaviour: InvalidCacheDelete,
	}
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// NewPipeline assembles the transformation stages (components A–I) behind
// the raw file reader into a single Loader, wrapped outermost-first in the
// order §4.L mandates:
//
//	mediaQueryGrouper → lessCompiler → importFlattener → keyframeScoper →
//	markerInserter → commentStripper → wrapperRenamer → reader
//
// with the minifier wrapped around the whole chain. The cache (K) is not
// part of the returned Loader.
func NewPipeline(cfg Config, reader Loader) Loader {
	engine := cfg.LessEngine
	if engine == nil {
		engine = NewDefaultLessEngine()
	}

	var loader Loader = reader
	loader = newWrapperRenamer(cfg, loader)
	loader = newCommentStripper(cfg, loader)

	gen := newMarkerGenerator()
	loader = newMarkerInserter(cfg, loader, gen)
	loader = newKeyframeScoper(cfg, loader)
	loader = newImportFlattener(cfg, loader)
	loader = newCompileAdapter(cfg, loader, engine, gen)
	if cfg.GroupMediaQueries {
		loader = newMediaGrouper(cfg, loader)
	}
	loader = newMinifyingLoader(cfg, loader)
	return loader
}

// minifyingLoader runs the minifier (§4.I) over whatever the wrapped loader
// produced; it always runs, both compositions enable it per §4.L.
type minifyingLoader struct {
	next Loader
	log  *zap.Logger
}

func newMinifyingLoader(cfg Config, next Loader) Loader {
	return &minifyingLoader{next: next, log: cfg.logger().Named("css-minifier")}
}

func (m *minifyingLoader) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := m.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	fc.Content = Minify(fc.Content)
	return fc, nil
}

func wrapErr(stage string, relativePath string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", stage, relativePath, err)
}
