package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	DB        interface{}     // 数据库连接,运行时注入
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`       // 未配置时按 ResolveSecret 规则处理
	SecretFile  string `mapstructure:"secret_file"`  // 开发环境兜底密钥的缓存文件
	TokenExpire int    `mapstructure:"token_expire"` // 秒
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	Output     string `mapstructure:"output"` // stdout, file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// CORSConfig 跨域配置（默认拒绝，仅放行白名单）
type CORSConfig struct {
	FrontendURL        string   `mapstructure:"frontend_url"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	AllowVercelPreview bool     `mapstructure:"allow_vercel_preview"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	ImageDir       string `mapstructure:"image_dir"`       // 图片存储目录
	TempDir        string `mapstructure:"temp_dir"`        // CSV 等临时文件目录
	MaxSizeMB      int    `mapstructure:"max_size_mb"`     // 单文件上限
	CleanupCron    string `mapstructure:"cleanup_cron"`    // 临时目录清理的 cron 表达式
	RetentionHours int    `mapstructure:"retention_hours"` // 临时文件保留时长
}

// RateLimitConfig 限流配置（仅认证接口）
type RateLimitConfig struct {
	AuthRPS   float64 `mapstructure:"auth_rps"`
	AuthBurst int     `mapstructure:"auth_burst"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 环境变量覆盖，如 TMS_AUTH_JWT_SECRET / TMS_DATABASE_PASSWORD
	v.SetEnvPrefix("TMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	GlobalConfig = config

	return config, nil
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// ResolveSecret 解析JWT密钥
// release 模式下未配置密钥直接报错；开发环境生成一次性密钥并缓存到本地文件,
// 避免每次重启后已签发的Token全部失效
func (c *Config) ResolveSecret() (string, error) {
	jwtCfg := &c.Auth.JWT

	if s := strings.TrimSpace(jwtCfg.Secret); s != "" {
		return s, nil
	}

	if c.Server.Mode == "release" {
		return "", fmt.Errorf("release 模式必须配置 auth.jwt.secret")
	}

	cacheFile := jwtCfg.SecretFile
	if cacheFile == "" {
		cacheFile = ".jwt-secret"
	}

	if data, err := os.ReadFile(cacheFile); err == nil {
		if s := strings.TrimSpace(string(data)); s != "" {
			return s, nil
		}
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成开发密钥失败: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := os.WriteFile(cacheFile, []byte(secret+"\n"), 0600); err != nil {
		return "", fmt.Errorf("写入密钥缓存文件失败: %w", err)
	}

	return secret, nil
}
