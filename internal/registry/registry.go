package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gridrooms/tictactoe-server/internal/apperror"
	"github.com/gridrooms/tictactoe-server/internal/entity"
)

// Registry is the process-wide table of live matches, the sole authority
// for match lifetime. Its lock only guards the table itself; each match
// carries its own lock, so work on distinct matches never contends here
// beyond the map lookup.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*entity.Match
}

func New() *Registry {
	return &Registry{
		matches: make(map[string]*entity.Match),
	}
}

// Create - inserts a new match under a fresh collision-free identifier.
func (that *Registry) Create() *entity.Match {
	match := entity.NewMatch(uuid.NewString())

	that.mu.Lock()
	defer that.mu.Unlock()

	that.matches[match.ID()] = match

	return match
}

// Get - returns the match for the given identifier.
func (that *Registry) Get(id string) (*entity.Match, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	match, ok := that.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrMatchNotFound, id)
	}

	return match, nil
}

// Remove - drops the match from the table; unknown identifiers are a no-op.
func (that *Registry) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.matches, id)
}

// SeatedMatches - lists the matches in which the connection currently
// occupies a seat. Observers are not counted.
func (that *Registry) SeatedMatches(connID string) []*entity.Match {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var seated []*entity.Match
	for _, match := range that.matches {
		if match.HoldsSeat(connID) {
			seated = append(seated, match)
		}
	}

	return seated
}
