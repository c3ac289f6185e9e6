package screen

import (
	"fmt"

	"vet-console/internal/domain/entity"
)

// Console agrupa una pantalla por cada kind del registry.
type Console struct {
	reg     *entity.Registry
	screens map[entity.Kind]*Screen
}

func NewConsole(opts Options) (*Console, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("screen: nil registry")
	}
	c := &Console{
		reg:     opts.Registry,
		screens: make(map[entity.Kind]*Screen, len(opts.Registry.Kinds())),
	}
	for _, kind := range opts.Registry.Kinds() {
		sc, err := New(kind, opts)
		if err != nil {
			return nil, fmt.Errorf("screen %s: %w", kind, err)
		}
		c.screens[kind] = sc
	}
	return c, nil
}

func (c *Console) Registry() *entity.Registry { return c.reg }

// Screen devuelve la pantalla de kind o entity.ErrUnknownKind.
func (c *Console) Screen(kind entity.Kind) (*Screen, error) {
	sc, ok := c.screens[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownKind, kind)
	}
	return sc, nil
}
