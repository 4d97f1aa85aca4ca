package server

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 进程运行配置；来自环境变量（可选 .env），均有默认值
type Config struct {
	Addr         string        // HTTP/WebSocket 监听地址
	LogFile      string        // 日志文件路径
	LogLevel     string        // 日志级别（debug/info/warn/error）
	TickInterval time.Duration // 对局推进周期
	FoodTarget   int           // 每房间食物目标数量
	WebDir       string        // 静态客户端目录
}

// LoadConfig 读取 .env（若存在）与环境变量，缺省用默认值
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:         getEnvWithDefault("SNAKE_ADDR", ":8080"),
		LogFile:      getEnvWithDefault("SNAKE_LOG_FILE", "app.log"),
		LogLevel:     getEnvWithDefault("SNAKE_LOG_LEVEL", "info"),
		TickInterval: time.Duration(getEnvAsIntWithDefault("SNAKE_TICK_MS", 150)) * time.Millisecond,
		FoodTarget:   getEnvAsIntWithDefault("SNAKE_FOOD_TARGET", defaultFoodTarget),
		WebDir:       getEnvWithDefault("SNAKE_WEB_DIR", "web"),
	}
}

// DefaultConfig 测试与嵌入场景用的默认配置（不读环境）
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		LogFile:      "app.log",
		LogLevel:     "info",
		TickInterval: DefaultTickInterval,
		FoodTarget:   defaultFoodTarget,
		WebDir:       "web",
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
