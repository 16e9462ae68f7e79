package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/telmaren/cadenza/internal/modules/music/application/ports"
	"github.com/telmaren/cadenza/internal/modules/music/domain"
)

// ConnectionManager serializes access to a guild's single voice connection.
// It guarantees at most one live handle: establishing a new connection always
// tears the previous one down first.
type ConnectionManager struct {
	guildID  snowflake.ID
	gateway  ports.VoiceGateway
	settings Settings

	mu   sync.Mutex
	conn ports.VoiceConn
}

// NewConnectionManager creates a manager for one guild.
func NewConnectionManager(guildID snowflake.ID, gateway ports.VoiceGateway, settings Settings) *ConnectionManager {
	return &ConnectionManager{
		guildID:  guildID,
		gateway:  gateway,
		settings: settings.withDefaults(),
	}
}

// Connect establishes a fresh connection to channelID. Any existing handle is
// force-disconnected first, followed by a short settle delay. Up to
// ConnectAttempts joins are made, each bounded by ConnectTimeout, with
// ConnectBackoff between failures. Exhausting all attempts yields
// ErrConnectFailed.
func (m *ConnectionManager) Connect(ctx context.Context, channelID snowflake.ID) (ports.VoiceConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= m.settings.ConnectAttempts; attempt++ {
		if m.conn != nil {
			_ = m.conn.Disconnect()
			m.conn = nil
			if err := sleepCtx(ctx, m.settings.SettleDelay); err != nil {
				return nil, err
			}
		}

		joinCtx, cancel := context.WithTimeout(ctx, m.settings.ConnectTimeout)
		conn, err := m.gateway.Join(joinCtx, m.guildID, channelID)
		cancel()
		if err == nil {
			m.conn = conn
			slog.Info("joined voice channel",
				"guild_id", m.guildID, "channel_id", channelID, "attempt", attempt)
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		slog.Warn("voice connect attempt failed",
			"guild_id", m.guildID, "channel_id", channelID, "attempt", attempt, "error", err)
		if attempt < m.settings.ConnectAttempts {
			if err := sleepCtx(ctx, m.settings.ConnectBackoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v",
		domain.ErrConnectFailed, m.settings.ConnectAttempts, lastErr)
}

// Ensure returns the current handle when it is ready and bound to channelID,
// otherwise establishes a fresh connection.
func (m *ConnectionManager) Ensure(ctx context.Context, channelID snowflake.ID) (ports.VoiceConn, error) {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn != nil && conn.IsReady() && conn.ChannelID() == channelID {
		return conn, nil
	}
	return m.Connect(ctx, channelID)
}

// Disconnect drops the current handle, if any. It never fails on an already
// disconnected or absent handle.
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return
	}
	if err := m.conn.Disconnect(); err != nil {
		slog.Warn("voice disconnect failed", "guild_id", m.guildID, "error", err)
	}
	m.conn = nil
}

// Current returns the live handle, or nil when not connected.
func (m *ConnectionManager) Current() ports.VoiceConn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
