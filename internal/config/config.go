package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig は設定値の組み合わせが不正な場合に返されます。
var ErrInvalidConfig = errors.New("invalid config")

// Randomizer は次のピースの選び方です。
type Randomizer string

const (
	RandomizerUniform Randomizer = "uniform" // 7種類から毎回一様に選ぶ
	RandomizerBag     Randomizer = "bag"     // 7種類を1つずつ含むバッグをシャッフルして順に出す
)

// Game はゲームエンジン1つ分のルール設定です。
type Game struct {
	MaxTickInterval time.Duration // 自動落下の最大間隔（初期値）
	MinTickInterval time.Duration // 自動落下の最小間隔（これより速くはならない）
	ScorePerSpeedUp int           // このスコアごとに落下間隔をSpeedUpStepだけ短くする（0なら固定）
	SpeedUpStep     time.Duration
	LevelUpLines    int  // レベル表示用: このライン数ごとにレベルが1上がる
	AutoReset       bool // ゲームオーバー時にすぐ新しいゲームを始めるかどうか
	Randomizer      Randomizer
}

// Config はアプリケーション全体の設定です。
type Config struct {
	Game          Game
	Seed          int64         // 0の場合は現在時刻を使う
	FrameInterval time.Duration // セッションマネージャーやシミュレーションの1フレームの長さ
}

// DefaultGame は固定間隔0.75秒、ゲームオーバー時に自動リセットするルール設定を返します。
func DefaultGame() Game {
	return Game{
		MaxTickInterval: 750 * time.Millisecond,
		MinTickInterval: 200 * time.Millisecond,
		ScorePerSpeedUp: 0,
		SpeedUpStep:     50 * time.Millisecond,
		LevelUpLines:    10,
		AutoReset:       true,
		Randomizer:      RandomizerUniform,
	}
}

// Validate は設定値が矛盾していないかを確認します。
func (g Game) Validate() error {
	if g.MinTickInterval <= 0 {
		return fmt.Errorf("%w: min tick interval must be positive, got %v", ErrInvalidConfig, g.MinTickInterval)
	}
	if g.MaxTickInterval < g.MinTickInterval {
		return fmt.Errorf("%w: max tick interval %v is below min %v", ErrInvalidConfig, g.MaxTickInterval, g.MinTickInterval)
	}
	if g.ScorePerSpeedUp < 0 || g.SpeedUpStep < 0 {
		return fmt.Errorf("%w: speed-up settings must not be negative", ErrInvalidConfig)
	}
	if g.LevelUpLines <= 0 {
		return fmt.Errorf("%w: level-up lines must be positive, got %d", ErrInvalidConfig, g.LevelUpLines)
	}
	switch g.Randomizer {
	case RandomizerUniform, RandomizerBag:
	default:
		return fmt.Errorf("%w: unknown randomizer %q", ErrInvalidConfig, g.Randomizer)
	}
	return nil
}

// LoadConfig は.envファイルと環境変数から設定を読み込みます。
// ファイルが無くてもエラーにはせず、環境変数とデフォルト値を使います。
func LoadConfig(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("[Config] warning: Error loading .env file (this is fine in production): %v", err)
	}

	def := DefaultGame()
	cfg := &Config{
		Game: Game{
			MaxTickInterval: GetEnvAsDuration("TETRIS_MAX_TICK_INTERVAL_MS", def.MaxTickInterval),
			MinTickInterval: GetEnvAsDuration("TETRIS_MIN_TICK_INTERVAL_MS", def.MinTickInterval),
			ScorePerSpeedUp: GetEnvAsInt("TETRIS_SCORE_PER_SPEEDUP", def.ScorePerSpeedUp),
			SpeedUpStep:     GetEnvAsDuration("TETRIS_SPEEDUP_STEP_MS", def.SpeedUpStep),
			LevelUpLines:    GetEnvAsInt("TETRIS_LEVEL_UP_LINES", def.LevelUpLines),
			AutoReset:       GetEnvAsBool("TETRIS_AUTO_RESET", def.AutoReset),
			Randomizer:      Randomizer(strings.ToLower(GetEnv("TETRIS_RANDOMIZER", string(def.Randomizer)))),
		},
		Seed:          int64(GetEnvAsInt("TETRIS_SEED", 0)),
		FrameInterval: GetEnvAsDuration("TETRIS_FRAME_INTERVAL_MS", 16*time.Millisecond),
	}
	return cfg
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[Config] Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("[Config] Invalid boolean value for %s: %s, using default: %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration はミリ秒単位の整数値を読み込みます。
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	ms := GetEnvAsInt(key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
