package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"audioai/internal/audio"
	"audioai/internal/inference"
	"audioai/internal/normalize"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	Server struct {
		Mode string `yaml:"mode"`
		IP   string `yaml:"ip"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Inference InferenceConfig `yaml:"inference"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Audio     AudioConfig     `yaml:"audio"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       struct {
		Encode string `yaml:"encode"` // console | json
	} `yaml:"log"`
	CMDExit []string `yaml:"cmd_exit"`
}

type ModelConfig struct {
	Endpoint string        `yaml:"endpoint"`
	ModelID  string        `yaml:"model_id"`
	Device   string        `yaml:"device"`
	Timeout  time.Duration `yaml:"timeout"`
}

type InferenceConfig struct {
	Language      string        `yaml:"language"`
	UseITN        bool          `yaml:"use_itn"`
	BanEmoUnk     bool          `yaml:"ban_emo_unk"`
	MaxConcurrent int64         `yaml:"max_concurrent"` // 0 不限制
	Timeout       time.Duration `yaml:"timeout"`        // 0 不限制
}

type NormalizeConfig struct {
	TagTable       string `yaml:"tag_table"`
	ProbTable      string `yaml:"prob_table"`
	ScoreUnit      string `yaml:"score_unit"`
	ScorePrecision int    `yaml:"score_precision"`
}

type AudioConfig struct {
	CheckURLExtension bool     `yaml:"check_url_extension"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	SniffContent      bool     `yaml:"sniff_content"`
}

type UploadConfig struct {
	MaxBytes int64  `yaml:"max_bytes"`
	TempDir  string `yaml:"temp_dir"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"` // 0 关闭限流
	Burst int     `yaml:"burst"`
}

// Default 默认配置，端口必须由配置文件或 PORT 提供
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Mode = gin.ReleaseMode
	cfg.Server.IP = "0.0.0.0"
	cfg.Model = ModelConfig{
		Endpoint: "http://127.0.0.1:50000",
		ModelID:  inference.DefaultModelID,
		Device:   inference.DefaultDevice,
		Timeout:  60 * time.Second,
	}
	cfg.Inference = InferenceConfig{Language: "auto"}
	cfg.Normalize = NormalizeConfig{
		TagTable:       normalize.TableAny,
		ProbTable:      normalize.TableLower,
		ScoreUnit:      string(normalize.UnitFraction),
		ScorePrecision: -1,
	}
	cfg.Audio = AudioConfig{
		CheckURLExtension: false,
		AllowedExtensions: audio.DefaultAllowedExtensions,
	}
	cfg.Upload = UploadConfig{MaxBytes: 50 << 20}
	cfg.Log.Encode = "json"
	cfg.CMDExit = []string{"exit", "quit", "退出"}
	return cfg
}

// LoadDotEnv 加载 .env，文件不存在时忽略
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load 默认值 -> 配置文件(可缺省) -> 环境变量 -> 校验
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("HOST"); ok {
		c.Server.IP = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		c.Server.Port = v
	}
	if v := os.Getenv("SENSEVOICE_ENDPOINT"); v != "" {
		c.Model.Endpoint = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is not set (PORT)")
	}
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	switch c.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	if c.Model.Endpoint == "" {
		return errors.New("model endpoint is empty")
	}
	if _, err = c.NormalizeOptions(); err != nil {
		return err
	}
	if c.Inference.MaxConcurrent < 0 {
		return errors.New("inference.max_concurrent must be >= 0")
	}
	return nil
}

func (c *Config) Addr() string {
	return c.Server.IP + ":" + c.Server.Port
}

func (c *Config) NormalizeOptions() (normalize.Options, error) {
	opts := normalize.DefaultOptions()
	var err error
	if opts.TagTable, err = normalize.LookupTable(c.Normalize.TagTable); err != nil {
		return opts, fmt.Errorf("normalize.tag_table: %w", err)
	}
	// 分数表只能是单一方案，any 会让大小写两个标签落到同一分类
	switch c.Normalize.ProbTable {
	case normalize.TableUpper, normalize.TableLower, "":
	default:
		return opts, fmt.Errorf("normalize.prob_table: must be %q or %q, got %q",
			normalize.TableUpper, normalize.TableLower, c.Normalize.ProbTable)
	}
	if c.Normalize.ProbTable != "" {
		opts.ProbTable, _ = normalize.LookupTable(c.Normalize.ProbTable)
	}
	switch unit := normalize.ScoreUnit(c.Normalize.ScoreUnit); unit {
	case normalize.UnitFraction, normalize.UnitPercent:
		opts.Unit = unit
	case "":
	default:
		return opts, fmt.Errorf("normalize.score_unit: unknown unit %q", c.Normalize.ScoreUnit)
	}
	if p := c.Normalize.ScorePrecision; p < -1 || p > normalize.MaxPrecision {
		return opts, fmt.Errorf("normalize.score_precision: must be between -1 and %d, got %d", normalize.MaxPrecision, p)
	}
	opts.Precision = c.Normalize.ScorePrecision
	if c.Inference.UseITN {
		opts.Terminator = normalize.TerminatorITN
	}
	return opts, nil
}

func (c *Config) InferenceOptions() inference.Options {
	opts := inference.DefaultOptions()
	if c.Inference.Language != "" {
		opts.Language = c.Inference.Language
	}
	opts.UseITN = c.Inference.UseITN
	opts.BanEmoUnk = c.Inference.BanEmoUnk
	return opts
}

func (c *Config) AudioPolicy() audio.Policy {
	return audio.Policy{
		CheckURLExtension: c.Audio.CheckURLExtension,
		AllowedExtensions: c.Audio.AllowedExtensions,
		SniffContent:      c.Audio.SniffContent,
	}
}
