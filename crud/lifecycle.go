package crud

// DetachFunc nulls a required-to-be-valid reference held against the entity
// being deleted, persisting the nulling as its own step before the delete.
type DetachFunc func(entity any) error

// DetachRegistry maps entity type tags to their detach rules. Rules are
// declared statically at wiring time rather than discovered by probing the
// entity for accessors at runtime.
type DetachRegistry struct {
	rules map[string][]DetachFunc
}

func NewDetachRegistry() *DetachRegistry {
	return &DetachRegistry{rules: make(map[string][]DetachFunc)}
}

// Register adds a detach rule for the given entity type tag.
func (g *DetachRegistry) Register(typeTag string, fn DetachFunc) {
	g.rules[typeTag] = append(g.rules[typeTag], fn)
}

// Detach runs every rule registered for the type tag, stopping at the first
// failure so the delete never proceeds past a dangling reference.
func (g *DetachRegistry) Detach(typeTag string, entity any) error {
	for _, fn := range g.rules[typeTag] {
		if err := fn(entity); err != nil {
			return err
		}
	}
	return nil
}
