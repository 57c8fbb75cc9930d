package main

import (
	"fmt"

	"go.uber.org/zap"

	"stylepipe/config"
	"stylepipe/css"
)

// buildPipeline turns one loaded Config into the fully composed, cache-
// wrapped Loader every command (serve, render, warm-cache) runs requests
// through.
func buildPipeline(cfg *config.Config, log *zap.Logger) (css.Loader, *css.Cache, error) {
	pcfg := css.NewDefaultConfig()
	switch cfg.Pipeline.Composition {
	case "enhanced":
		pcfg = css.NewEnhancedConfig(cfg.Pipeline.TagToRemove, cfg.Pipeline.SentinelTag)
	case "default":
		// already the zero-configured default
	default:
		return nil, nil, fmt.Errorf("unknown pipeline composition %q", cfg.Pipeline.Composition)
	}
	pcfg.Logger = log

	if cfg.Pipeline.RaiseOnImportErr {
		pcfg.OnCircularImport = css.ImportPolicyRaise
		pcfg.OnUnsupportedImport = css.ImportPolicyRaise
	} else {
		pcfg.OnCircularImport = css.ImportPolicyWarnAndEmpty
		pcfg.OnUnsupportedImport = css.ImportPolicyWarnAndEmpty
	}
	if cfg.Pipeline.RaiseOnCompileErr {
		pcfg.OnCompilerError = css.CompilerErrorRaise
	} else {
		pcfg.OnCompilerError = css.CompilerErrorWarnAndContinue
	}
	if cfg.Cache.DeleteInvalidEntries {
		pcfg.InvalidCacheBehaviour = css.InvalidCacheDelete
	} else {
		pcfg.InvalidCacheBehaviour = css.InvalidCacheIgnore
	}

	reader := css.NewFileReader(cfg.Server.RootDir, log)
	retriever := css.NewLastModifiedRetriever(cfg.Server.RootDir, log, cfg.Pipeline.Extensions...)

	pipeline := css.NewPipeline(pcfg, reader)
	cache := css.NewCache(pipeline, retriever, cfg.Cache.DiskDir, cfg.Cache.IndexPath, pcfg.InvalidCacheBehaviour, log)
	return cache, cache, nil
}
