package application

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Registry maps guilds to their players, constructing each player on first
// use. Entries are never evicted; an idle Player holds no goroutine and no
// connection, only its leftover queue.
type Registry struct {
	mu      sync.Mutex
	players map[snowflake.ID]*Player
	factory func(guildID snowflake.ID) *Player
}

// NewRegistry creates a registry that builds players with the given factory.
func NewRegistry(factory func(guildID snowflake.ID) *Player) *Registry {
	return &Registry{
		players: make(map[snowflake.ID]*Player),
		factory: factory,
	}
}

// GetOrCreate returns the guild's player, constructing it exactly once even
// under concurrent first access.
func (r *Registry) GetOrCreate(guildID snowflake.ID) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}
	p := r.factory(guildID)
	r.players[guildID] = p
	return p
}

// Get returns the guild's player, or nil when none has been created yet.
func (r *Registry) Get(guildID snowflake.ID) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[guildID]
}

// StopAll stops every player and drops their voice connections. Used on
// shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	r.mu.Unlock()

	for _, p := range players {
		p.Disconnect()
	}
}
