package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"duba/internal/config"
	"duba/internal/music/player"
	"duba/internal/music/registry"
	"duba/internal/music/resolver"
	"duba/internal/music/voice"
)

// Bot wires the Discord gateway to the playback engine.
type Bot struct {
	dg     *discordgo.Session
	cfg    *config.Config
	engine *player.Engine
	voice  *voice.Manager
}

// StartBot runs the Discord bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	vm := voice.NewManager(dg)
	b := &Bot{
		dg:    dg,
		cfg:   cfg,
		voice: vm,
	}
	b.engine = player.New(
		registry.New(),
		resolver.New(cfg.YTDLPPath, cfg.FFmpegPath),
		&voiceTransport{m: vm},
		&channelNotifier{dg: dg},
	)

	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// onReady is called when the gateway handshake completes.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ %s is connected.", r.User.Username)
}

// onVoiceStateUpdate watches for the bot itself being disconnected from a
// voice channel; guild playback state is cleared when that happens.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.ChannelID != "" || v.GuildID == "" {
		return
	}
	if s.State.User == nil || v.UserID != s.State.User.ID {
		return
	}

	log.Printf("[INFO] Bot removed from voice channel | guild=%s", v.GuildID)
	b.engine.ClearGuild(v.GuildID)
	b.voice.Drop(v.GuildID)
}

// findUserVoiceState returns the voice channel the user currently sits in.
func (b *Bot) findUserVoiceState(s *discordgo.Session, guildID, userID string) (string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", fmt.Errorf("user not in any voice channel")
}

// say posts a plain message; delivery failures are logged, never propagated.
func (b *Bot) say(channelID, message string) {
	if _, err := b.dg.ChannelMessageSend(channelID, message); err != nil {
		log.Printf("[ERR] Error sending message: %v", err)
	}
}
