package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylepipe/server"
	"stylepipe/state"
)

func runServe(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	srv := server.New(env)
	env.Log.Info("Serving stylesheets", zap.String("listen", env.Cfg.Server.Listen), zap.String("root", env.Cfg.Server.RootDir))
	return srv.ListenAndServe(ctx, env.Cfg.Server.Listen)
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	relativePath := cmd.Args().Get(0)
	if relativePath == "" {
		return fmt.Errorf("missing RELATIVE_PATH argument")
	}

	fc, err := env.Pipeline.Load(ctx, relativePath)
	if err != nil {
		return fmt.Errorf("unable to render %q: %w", relativePath, err)
	}

	out := os.Stdout
	if dest := cmd.String("out"); dest != "" {
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dest, err)
		}
		defer f.Close()
		out = f
	}
	_, err = out.WriteString(fc.Content)
	return err
}

func runWarmCache(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	root := env.Cfg.Server.RootDir
	extensions := env.Cfg.Pipeline.Extensions

	var count int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !matchesAny(path, extensions) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, err := env.Pipeline.Load(ctx, rel); err != nil {
			env.Log.Warn("Unable to warm cache entry", zap.String("file", rel), zap.Error(err))
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to walk root %q: %w", root, err)
	}
	env.Log.Info("Cache warmed", zap.Int("files", count))
	return nil
}

func matchesAny(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
