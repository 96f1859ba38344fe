package naming

import (
	"errors"
	"fmt"
)

// ErrNameCollision is returned by Guard.Claim when two different sources
// would land on the same name in the shared namespace.
var ErrNameCollision = errors.New("name collision in shared namespace")

// Guard tracks which source owns each destination name. Re-claiming a name
// for the same source is allowed.
type Guard struct {
	owners map[string]string // destination name → source path
}

// NewGuard creates a ready-to-use guard.
func NewGuard() *Guard {
	return &Guard{owners: make(map[string]string)}
}

// Claim records name as owned by source.
func (g *Guard) Claim(source, name string) error {
	if owner, ok := g.owners[name]; ok && owner != source {
		return fmt.Errorf("%w: %s wanted by %s and %s", ErrNameCollision, name, owner, source)
	}
	g.owners[name] = source
	return nil
}

// Claimed reports whether name has an owner.
func (g *Guard) Claimed(name string) bool {
	_, ok := g.owners[name]
	return ok
}
