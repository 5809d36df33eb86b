package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"salesboard/internal/config"
	"salesboard/internal/logger"
	"salesboard/internal/server"
	"salesboard/internal/tracing"
)

var (
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	driver     = flag.String("store", "", "存储驱动 sqlite/postgres/memory (覆盖配置文件)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Salesboard - 销售数据汇总看板")
	fmt.Println("==========================================")

	// 加载配置
	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, info, err := config.LoadFile(path)
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	logg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logg.Sync()

	logg.Info("config loaded",
		"path", info.Path,
		"file_found", info.FileFound,
		"store", cfg.Store.Driver,
		"data_dir", config.ResolveDataDir(cfg),
	)

	// 创建服务器
	srv, err := server.NewServer(cfg, logg)
	if err != nil {
		logg.Fatal("server init failed", "error", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// 等待信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, cfg.Trace, logg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		return srv.Run(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\n正在关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logg.Warn("tracing shutdown failed", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	fmt.Println("\n按 Ctrl+C 停止服务...")

	if err := g.Wait(); err != nil {
		logg.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
