package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"salesboard/internal/cache"
	"salesboard/internal/config"
	"salesboard/internal/importer"
	"salesboard/internal/logger"
	"salesboard/internal/store"
)

var (
	configPath = flag.String("config", "", "配置文件路径")
	filePath   = flag.String("file", "", "要导入的 Excel/CSV 文件")
)

func main() {
	flag.Parse()
	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: salesimport -file sales.xlsx [-config config.toml]")
		os.Exit(2)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, _, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logg.Sync()

	if _, err := config.EnsureDataDir(cfg); err != nil {
		logg.Fatal("create data directory failed", "error", err)
	}

	st, err := store.Open(cfg, logg)
	if err != nil {
		logg.Fatal("open store failed", "error", err)
	}
	// 写入后需要让缓存的筛选项失效
	st = cache.Install(st, cfg.Cache, logg)
	defer func() { _ = st.Close() }()

	coord := importer.NewCoordinator(st, cfg.Import.BatchSize, logg)
	ch := coord.Import(context.Background(), importer.ImportOptions{
		FilePath:         *filePath,
		OriginalFilename: filepath.Base(*filePath),
	})

	failed := false
	for evt := range ch {
		fmt.Printf("[%s] %s\n", evt.Type, evt.Message)
		if evt.Type == importer.EventError {
			failed = true
		}
	}
	if failed {
		_ = st.Close()
		os.Exit(1)
	}
}
