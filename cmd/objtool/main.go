// objtool is a CLI utility for inspecting Wavefront .obj files and managing
// the packed vertex buffer disk cache.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/wavefront/internal/config"
	"github.com/Faultbox/wavefront/internal/logger"
	"github.com/Faultbox/wavefront/pkg/wavefront"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		cmdInfo(cfg, args[1:])
	case "warm":
		cmdWarm(cfg, args[1:])
	case "cache":
		cmdCache(cfg, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront .obj buffer and cache utility

Usage:
  objtool [flags] <command> [arguments]

Commands:
  info <file.obj>        Show per-object vertex layout
  warm <file.obj>...     Parse file(s) and populate the cache
  cache info             List cache entries
  cache clear            Remove all cache entries

Flags:
  -config <path>         Config file
  -cache-dir <path>      Cache directory
  -no-cache              Bypass the disk cache
  -mapped                Memory-map cache entries
  -hash-contents         Key cache entries by content hash
  -by-path               Key cache entries by source path
  -debug                 Enable debug logging

Examples:
  objtool info model.obj
  objtool -mapped warm models/*.obj
  objtool cache clear`)
}

// openCache opens the configured cache. A cache that cannot be initialized
// degrades to uncached parsing.
func openCache(cfg *config.Config) *wavefront.Cache {
	opts := wavefront.Options{
		LoadMappedData:        cfg.Cache.MappedData,
		HashUsingFileContents: cfg.Cache.HashContents,
	}

	var (
		c   *wavefront.Cache
		err error
	)
	if cfg.Cache.Dir != "" {
		c, err = wavefront.NewCacheAt(cfg.Cache.Dir, opts)
	} else {
		c, err = wavefront.NewCache(cfg.Cache.Name, opts)
	}
	if err != nil {
		logger.Warn("cache unavailable, parsing without cache", zap.Error(err))
		return nil
	}
	c.SetEnabled(cfg.Cache.Enabled)
	return c
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	cache := openCache(cfg)
	file := wavefront.NewFile(args[0], cache)
	defer file.Close()

	start := time.Now()
	objects, err := file.Objects()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("loaded objects",
		zap.String("file", args[0]),
		zap.Int("objects", len(objects)),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Objects: %d\n", len(objects))
	fmt.Println()

	for _, obj := range objects {
		name := obj.Name
		if name == "" {
			name = "(root)"
		}
		fmt.Printf("%s\n", name)
		fmt.Printf("  vertices:  %d\n", obj.VertexCount)
		fmt.Printf("  stride:    %d bytes\n", obj.Stride())
		fmt.Printf("  position:  size %d, offset %d\n", obj.PositionSize, obj.PositionOffset())
		fmt.Printf("  normal:    size %d, offset %d\n", obj.NormalSize, obj.NormalOffset())
		fmt.Printf("  texcoord:  size %d, offset %d\n", obj.TextureCoordSize, obj.TextureCoordOffset())
		fmt.Printf("  buffer:    %d bytes\n", len(obj.Buffer()))
		fmt.Printf("  source:    bytes %d-%d\n", obj.Range.Start, obj.Range.End)
	}
}

func cmdWarm(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool warm <file.obj>...")
		os.Exit(1)
	}

	cache := openCache(cfg)
	if cache == nil || !cache.Enabled() {
		fmt.Fprintln(os.Stderr, "Error: warm needs an enabled cache")
		os.Exit(1)
	}

	failed := 0
	for _, path := range args {
		file := wavefront.NewFile(path, cache)

		start := time.Now()
		objects, err := file.Objects()
		elapsed := time.Since(start)
		if err != nil {
			logger.Error("parse failed", zap.String("file", path), zap.Error(err))
			fmt.Printf("%-40s FAILED: %v\n", path, err)
			failed++
			continue
		}

		vertices := 0
		for _, obj := range objects {
			vertices += obj.VertexCount
		}
		fmt.Printf("%-40s %d objects, %d vertices (%v)\n", path, len(objects), vertices, elapsed)
		file.Close()
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func cmdCache(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool cache <info|clear>")
		os.Exit(1)
	}

	cache := openCache(cfg)
	if cache == nil {
		os.Exit(1)
	}

	switch args[0] {
	case "info":
		keys, err := cache.Entries()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var total int64
		for _, key := range keys {
			if info, err := os.Stat(filepath.Join(cache.Dir(), key)); err == nil {
				total += info.Size()
			}
		}

		fmt.Printf("Cache:   %s\n", cache.Name())
		fmt.Printf("Dir:     %s\n", cache.Dir())
		fmt.Printf("Entries: %d\n", len(keys))
		fmt.Printf("Size:    %.2f KB\n", float64(total)/1024)
		for _, key := range keys {
			fmt.Printf("  %s\n", key)
		}
	case "clear":
		if err := cache.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared")
	default:
		fmt.Fprintf(os.Stderr, "Unknown cache command: %s\n", args[0])
		os.Exit(1)
	}
}
