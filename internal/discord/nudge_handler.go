package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"relatus/internal/engine"
	"relatus/internal/graph"
	apperrors "relatus/pkg/errors"
)

// Handler answers nudge commands in Discord. The Discord user id doubles as
// the owner id: each user only ever sees their own graph.
type Handler struct {
	engine    *engine.Engine
	channelID string // optional channel restriction
	limit     int
	logger    *zap.Logger
}

// NewHandler creates a new Discord nudge handler
func NewHandler(eng *engine.Engine, channelID string, limit int, logger *zap.Logger) *Handler {
	if limit < 1 {
		limit = 5
	}
	return &Handler{
		engine:    eng,
		channelID: channelID,
		limit:     limit,
		logger:    logger,
	}
}

// HandleMessage processes a Discord message
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}
	if h.channelID != "" && m.ChannelID != h.channelID {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case strings.HasPrefix(content, "!nudges"):
		h.handleNudges(s, m, strings.TrimSpace(strings.TrimPrefix(content, "!nudges")))
	case strings.HasPrefix(content, "!network "):
		h.handleNetwork(s, m, strings.TrimSpace(strings.TrimPrefix(content, "!network ")))
	}
}

func (h *Handler) handleNudges(s *discordgo.Session, m *discordgo.MessageCreate, arg string) {
	limit := h.limit
	if arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			limit = n
		}
	}

	ctx := context.Background()
	nudges, err := h.engine.RelationshipNudges(ctx, m.Author.ID, limit)
	if err != nil {
		h.logger.Error("Failed to build nudges",
			zap.String("user_id", m.Author.ID),
			zap.Error(err),
		)
		h.reply(s, m.ChannelID, "Couldn't build your nudges right now.")
		return
	}

	h.reply(s, m.ChannelID, FormatNudges(nudges))
}

func (h *Handler) handleNetwork(s *discordgo.Session, m *discordgo.MessageCreate, goalName string) {
	if goalName == "" {
		h.reply(s, m.ChannelID, "Usage: `!network <goal name>`")
		return
	}

	ctx := context.Background()
	goal, err := h.findGoalByName(ctx, m.Author.ID, goalName)
	if err != nil {
		h.reply(s, m.ChannelID, fmt.Sprintf("No goal named %q found.", goalName))
		return
	}

	report, err := h.engine.AnalyzeGoalNetwork(ctx, m.Author.ID, goal.ID)
	if err != nil {
		if apperrors.IsNotFound(err) || apperrors.IsUnauthorized(err) {
			h.reply(s, m.ChannelID, fmt.Sprintf("No goal named %q found.", goalName))
			return
		}
		h.logger.Error("Failed to analyze goal network",
			zap.String("goal_id", goal.ID),
			zap.Error(err),
		)
		h.reply(s, m.ChannelID, "Couldn't analyze that goal right now.")
		return
	}

	h.reply(s, m.ChannelID, FormatNetworkReport(report))
}

func (h *Handler) findGoalByName(ctx context.Context, ownerID, name string) (*goalRef, error) {
	filter := engine.NewNodeFilter(ownerID).
		WithType(graph.NodeTypeGoal).
		WithSearch(name)
	nodes, err := h.engine.ListNodes(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("goal not found: %s", name)
	}
	return &goalRef{ID: nodes[0].ID, Name: nodes[0].Name}, nil
}

type goalRef struct {
	ID   string
	Name string
}

func (h *Handler) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		h.logger.Error("Failed to send Discord message",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
	}
}
