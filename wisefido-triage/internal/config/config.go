package config

import (
	"strings"
	"time"

	commoncfg "owlback/owl-common/config"
)

// Config wisefido-triage（HTTP → 外部分诊程序）配置
type Config struct {
	HTTP struct {
		Addr      string
		StaticDir string
	}
	Triage TriageConfig
	Log    struct {
		Level  string
		Format string
	}

	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	EventStream  string
	StreamMaxLen int64

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig
	MQTTTopic   string

	AuditMemoryLimit int
}

// TriageConfig 外部分诊程序配置
type TriageConfig struct {
	Bin             string        // 可执行文件路径
	Args            []string      // 放在子命令之前的固定参数
	WorkDir         string        // 工作目录（程序在这里读写 patients.json）
	Timeout         time.Duration // 单次调用超时
	SerializeWrites bool          // add/update/delete 串行执行
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}

	cfg.HTTP.Addr = commoncfg.EnvString("HTTP_ADDR", "")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":" + commoncfg.EnvString("PORT", "5000")
	}
	cfg.HTTP.StaticDir = commoncfg.EnvString("STATIC_DIR", "hospital-triage/public")

	cfg.Triage.Bin = commoncfg.EnvString("TRIAGE_BIN", "./triage")
	cfg.Triage.Args = strings.Fields(commoncfg.EnvString("TRIAGE_ARGS", ""))
	cfg.Triage.WorkDir = commoncfg.EnvString("TRIAGE_WORKDIR", "")
	cfg.Triage.Timeout = commoncfg.EnvDuration("TRIAGE_TIMEOUT", 10*time.Second)
	cfg.Triage.SerializeWrites = commoncfg.EnvBool("TRIAGE_SERIALIZE_WRITES", true)

	cfg.Log.Level = commoncfg.EnvString("LOG_LEVEL", "info")
	cfg.Log.Format = commoncfg.EnvString("LOG_FORMAT", "json")

	// 审计默认写内存；DB_ENABLED=true 时写 Postgres，连接失败回退到内存
	cfg.DBEnabled = commoncfg.EnvBool("DB_ENABLED", false)
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "owlrd",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  2,
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.AuditMemoryLimit = commoncfg.EnvInt("AUDIT_MEMORY_LIMIT", 500)

	cfg.RedisEnabled = commoncfg.EnvBool("REDIS_ENABLED", false)
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.EventStream = commoncfg.EnvString("TRIAGE_EVENT_STREAM", "triage:events")
	cfg.StreamMaxLen = int64(commoncfg.EnvInt("TRIAGE_EVENT_STREAM_MAXLEN", 10000))

	cfg.MQTTEnabled = commoncfg.EnvBool("MQTT_ENABLED", false)
	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:         "tcp://localhost:1883",
		ClientID:       "wisefido-triage",
		QoS:            1,
		ConnectTimeout: 5 * time.Second,
	}
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTTTopic = commoncfg.EnvString("MQTT_TOPIC", "triage/events")

	return cfg
}
