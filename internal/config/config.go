package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Store  StoreConfig  `toml:"store"`
	Import ImportConfig `toml:"import"`
	Query  QueryConfig  `toml:"query"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Trace  TraceConfig  `toml:"trace"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `toml:"port"`
	DevMode        bool     `toml:"dev_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DataConfig 数据目录配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// StoreConfig 存储配置
type StoreConfig struct {
	Driver string `toml:"driver"` // sqlite / postgres / memory
	DSN    string `toml:"dsn"`    // sqlite 为相对数据目录的文件名，postgres 为连接串
}

// ImportConfig 导入配置
type ImportConfig struct {
	BatchSize   int `toml:"batch_size"`
	MaxUploadMB int `toml:"max_upload_mb"`
}

// QueryConfig 查询配置
type QueryConfig struct {
	// 默认聚合接口使用的跨维度组合方式（and/or），按部署固定
	Combinator string `toml:"combinator"`
}

// CacheConfig 筛选项缓存配置
type CacheConfig struct {
	RedisAddr  string `toml:"redis_addr"` // 为空时不启用缓存
	TTLSeconds int    `toml:"ttl_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Mode string `toml:"mode"` // dev / prod
}

// TraceConfig 链路追踪配置
type TraceConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"` // OTLP/HTTP 地址，为空时输出到 stdout
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "salesboard.db",
		},
		Import: ImportConfig{
			BatchSize:   1000,
			MaxUploadMB: 50,
		},
		Query: QueryConfig{
			Combinator: "and",
		},
		Cache: CacheConfig{
			RedisAddr:  "",
			TTLSeconds: 300,
		},
		Log: LogConfig{
			Mode: "dev",
		},
		Trace: TraceConfig{
			Enabled:     false,
			SampleRatio: 0.1,
		},
	}
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && strings.TrimSpace(c.Store.DSN) == "" {
		return fmt.Errorf("store.dsn is required for postgres")
	}
	switch c.Query.Combinator {
	case "and", "or":
	default:
		return fmt.Errorf("unknown query combinator %q", c.Query.Combinator)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batch_size must be positive, got %d", c.Import.BatchSize)
	}
	if c.Import.MaxUploadMB <= 0 {
		return fmt.Errorf("import.max_upload_mb must be positive, got %d", c.Import.MaxUploadMB)
	}
	if c.Trace.SampleRatio < 0 || c.Trace.SampleRatio > 1 {
		return fmt.Errorf("trace.sample_ratio must be within [0, 1], got %v", c.Trace.SampleRatio)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 默认配置文件路径（可执行文件同目录下的 config.toml）
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, info, err
		}
	} else {
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	// 环境变量覆盖（用于容器/本地运行）
	applyEnv(config, &info)

	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) {
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
			info.PortSpecified = true
		}
	}
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_STORE_DRIVER")); v != "" {
		config.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_STORE_DSN")); v != "" {
		config.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_REDIS_ADDR")); v != "" {
		config.Cache.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_LOG_MODE")); v != "" {
		config.Log.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("SALESBOARD_OTLP_ENDPOINT")); v != "" {
		config.Trace.Enabled = true
		config.Trace.Endpoint = v
	}
}

// ResolveDataDir 数据目录的绝对路径（相对路径以可执行文件目录为基准）
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及 uploads 子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// UploadDir 上传临时文件目录
func UploadDir(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), "uploads")
}
