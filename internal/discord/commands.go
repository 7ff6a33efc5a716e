package discord

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"duba/internal/music/player"
)

const (
	emojiLoading  = "⏳"     // hourglass, while a play request is in flight
	emojiThumbsUp = "\U0001F44D" // success
	emojiSkull    = "\U0001F480" // failure
)

const helpMessage = `
**Commands:**
    **play [URL|Title]** - Plays (or adds to the queue) new tracks given a URL or a video title (supports youtube playlists).
    **pause** - Pauses the current track.
    **unpause** - Unpauses the currently paused track.
    **stop** - Stops the current song and clears the queue.
    **pn [URL|Title]** - Adds track to the top of the queue to be played next.
    **next** - Plays next track.
    **queue** - Shows the queue of tracks.
    **goto [INDEX]** - Plays immediately the specific track of the queue (discards all previous tracks).
    **shuffle** - Reorders the queue randomly.
`

// ParseCommand splits a prefixed chat message into command name and the
// rest of the line. ok is false for anything that is not a command.
func ParseCommand(content, prefix string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(content, prefix)
	if rest == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// onMessageCreate dispatches chat commands. Unrecognized or malformed
// commands are ignored without a reply.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := ParseCommand(m.Content, b.cfg.CommandPrefix)
	if !ok {
		return
	}
	// All playback commands are guild-scoped; DMs are rejected silently.
	if m.GuildID == "" {
		return
	}

	log.Printf("[INFO] Command %q from user %s | guild=%s", name, m.Author.ID, m.GuildID)

	switch name {
	case "ping":
		b.say(m.ChannelID, "Pong!")
	case "play":
		b.runPlay(s, m, args, false)
	case "pn":
		b.runPlay(s, m, args, true)
	case "pause":
		b.runPause(m)
	case "unpause":
		b.runUnpause(m)
	case "next":
		if err := b.engine.Next(m.GuildID, m.ChannelID); err != nil {
			log.Printf("[ERR] next failed: %v", err)
		}
	case "stop":
		b.runStop(m)
	case "queue":
		b.runQueue(m)
	case "shuffle":
		b.engine.Shuffle(m.GuildID)
		b.react(m, emojiThumbsUp)
	case "goto":
		b.runGoto(m, args)
	case "help":
		b.say(m.ChannelID, helpMessage)
	}
}

// runPlay handles play and pn, wrapped in the reaction protocol: hourglass
// while working, thumbs-up or skull for the outcome. Reactions are cosmetic
// and never affect playback state.
func (b *Bot) runPlay(s *discordgo.Session, m *discordgo.MessageCreate, input string, front bool) {
	if strings.TrimSpace(input) == "" {
		return
	}

	b.react(m, emojiLoading)
	err := b.playSong(s, m, input, front)
	b.unreact(m, emojiLoading)

	if err != nil {
		log.Printf("[ERR] play failed: %v", err)
		b.react(m, emojiSkull)
		return
	}
	b.react(m, emojiThumbsUp)
}

func (b *Bot) playSong(s *discordgo.Session, m *discordgo.MessageCreate, input string, front bool) error {
	voiceChannelID, err := b.findUserVoiceState(s, m.GuildID, m.Author.ID)
	if err != nil {
		b.say(m.ChannelID, "Not in a voice channel")
		return err
	}
	return b.engine.Play(m.GuildID, voiceChannelID, m.ChannelID, input, front)
}

func (b *Bot) runPause(m *discordgo.MessageCreate) {
	if err := b.engine.Pause(m.GuildID); err != nil {
		if errors.Is(err, player.ErrNotPlaying) {
			b.say(m.ChannelID, "o_O Already stopped")
			return
		}
		log.Printf("[ERR] pause failed: %v", err)
	}
}

func (b *Bot) runUnpause(m *discordgo.MessageCreate) {
	if err := b.engine.Unpause(m.GuildID); err != nil {
		if errors.Is(err, player.ErrNotPlaying) {
			b.say(m.ChannelID, "o_O Already stopped")
			return
		}
		log.Printf("[ERR] unpause failed: %v", err)
	}
}

func (b *Bot) runStop(m *discordgo.MessageCreate) {
	if err := b.engine.Stop(m.GuildID); err != nil {
		b.say(m.ChannelID, "Not in a voice channel")
		return
	}
	b.say(m.ChannelID, "Left voice channel")
}

func (b *Bot) runQueue(m *discordgo.MessageCreate) {
	tracks := b.engine.QueueSnapshot(m.GuildID, maxQueueLines)
	if len(tracks) == 0 {
		b.say(m.ChannelID, "The queue is empty!")
		return
	}
	b.say(m.ChannelID, FormatQueue(tracks))
}

func (b *Bot) runGoto(m *discordgo.MessageCreate, args string) {
	k, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		b.say(m.ChannelID, "Invalid song index. Check the queue to list the songs.")
		return
	}
	if err := b.engine.Goto(m.GuildID, m.ChannelID, k); err != nil {
		if errors.Is(err, player.ErrInvalidIndex) {
			b.say(m.ChannelID, "Invalid song index. Check the queue to list the songs.")
			return
		}
		log.Printf("[ERR] goto failed: %v", err)
	}
}

func (b *Bot) react(m *discordgo.MessageCreate, emoji string) {
	if err := b.dg.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		log.Printf("[WARN] Failed to add reaction: %v", err)
	}
}

func (b *Bot) unreact(m *discordgo.MessageCreate, emoji string) {
	if err := b.dg.MessageReactionRemove(m.ChannelID, m.ID, emoji, "@me"); err != nil {
		log.Printf("[WARN] Failed to remove reaction: %v", err)
	}
}
