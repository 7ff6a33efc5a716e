package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	YTDLPPath     string `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	FFmpegPath    string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
}

func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
