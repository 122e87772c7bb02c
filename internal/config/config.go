package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	LLM     LLMConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	RoundsPerGame         int
	MaxPlayers            int
	PointsPerVote         int
	PointsPerCorrectGuess int
	WritingPhase          time.Duration
	VotingPhase           time.Duration
	ResultsPhase          time.Duration
	PhaseEndLeeway        time.Duration // allowance for replies still in flight at the deadline
	RoomCodeLength        int
}

// LLMConfig holds decoy-generation configuration. An empty ExecPath
// selects the canned-response generator.
type LLMConfig struct {
	ExecPath  string
	ModelPath string
	MaxTokens int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"; empty picks by environment
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			RoundsPerGame:         getEnvInt("ROUNDS_PER_GAME", 3),
			MaxPlayers:            getEnvInt("MAX_PLAYERS", 10),
			PointsPerVote:         getEnvInt("POINTS_PER_VOTE", 100),
			PointsPerCorrectGuess: getEnvInt("POINTS_PER_CORRECT_GUESS", 200),
			WritingPhase:          getEnvSeconds("WRITING_PHASE_SECONDS", 60),
			VotingPhase:           getEnvSeconds("VOTING_PHASE_SECONDS", 30),
			ResultsPhase:          getEnvSeconds("RESULTS_PHASE_SECONDS", 10),
			PhaseEndLeeway:        getEnvSeconds("PHASE_END_LEEWAY_SECONDS", 3),
			RoomCodeLength:        getEnvInt("ROOM_CODE_LENGTH", 5),
		},
		LLM: LLMConfig{
			ExecPath:  getEnv("LLM_EXEC_PATH", ""),
			ModelPath: getEnv("LLM_MODEL_PATH", ""),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 128),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvSeconds returns an environment variable as a duration in seconds
func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}
