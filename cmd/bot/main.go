package main

import (
	"github.com/rs/zerolog/log"

	"github.com/dmtrv/subjectquiz/internal/config"
	"github.com/dmtrv/subjectquiz/internal/logger"
	"github.com/dmtrv/subjectquiz/internal/service"
	"github.com/dmtrv/subjectquiz/internal/telegram"
)

func main() {
	cfg := config.Load()
	log.Logger = logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.Token == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	// An empty or unreadable question file is not fatal: the bot still
	// runs and reports "no subjects available".
	bank := service.LoadQuestionBank(cfg.QuestionsFile)

	engine := service.NewEngine(bank, service.NewSessionStore(), cfg.BatchSize, cfg.RandomTarget)
	leaderboardService := service.NewLeaderboardService(cfg.RedisURL, cfg.GistID, cfg.GithubToken)

	bot, err := telegram.NewBot(cfg.Token, engine, leaderboardService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	if cfg.WebhookURL != "" {
		if err := bot.StartWebhook(cfg.WebhookURL, cfg.ListenAddr); err != nil {
			log.Fatal().Err(err).Msg("webhook listener failed")
		}
		return
	}
	bot.Start()
}
