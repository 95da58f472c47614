package viz

import (
	"github.com/pkg/errors"
)

// AppLinker keeps the control state of several viewer apps in sync. While
// enabled, every linkable trait of every component is linked with the
// equally-named trait of the same component on the other apps, using the
// first app as the sync hub.
type AppLinker struct {
	apps    []*VizApp
	unlinks []func()
	enabled bool
}

func NewAppLinker(apps ...*VizApp) (*AppLinker, error) {
	if len(apps) < 2 {
		return nil, errors.New("app linker works with at least two viewer apps")
	}
	seen := make(map[*VizApp]bool, len(apps))
	for _, app := range apps {
		if app == nil {
			return nil, errors.New("app linker only accepts viewer apps")
		}
		if seen[app] {
			return nil, errors.New("app linker works with distinct viewer apps")
		}
		seen[app] = true
	}
	return &AppLinker{apps: apps}, nil
}

func (l *AppLinker) Enabled() bool { return l.enabled }

// Enable links all matching traits. The first app's values win initially.
func (l *AppLinker) Enable() error {
	if l.enabled {
		return nil
	}
	hub := l.apps[0]
	for _, app := range l.apps[1:] {
		for _, name := range hub.ComponentNames() {
			peer := app.Component(name)
			if peer == nil {
				continue
			}
			hubTraits := hub.Component(name).LinkableTraits()
			peerTraits := indexTraits(peer.LinkableTraits())
			for _, nt := range hubTraits {
				pt, ok := peerTraits[nt.Name]
				if !ok {
					continue
				}
				unlink, err := nt.Trait.PairWith(pt.Trait)
				if err != nil {
					l.Disable()
					return errors.Wrapf(err, "link %s/%s", name, nt.Name)
				}
				l.unlinks = append(l.unlinks, unlink)
			}
		}
	}
	l.enabled = true
	return nil
}

// Disable removes all links; apps keep their current values.
func (l *AppLinker) Disable() {
	for _, unlink := range l.unlinks {
		unlink()
	}
	l.unlinks = nil
	l.enabled = false
}

func indexTraits(traits []NamedTrait) map[string]NamedTrait {
	idx := make(map[string]NamedTrait, len(traits))
	for _, nt := range traits {
		idx[nt.Name] = nt
	}
	return idx
}

// SharedTraits returns the first app's linkable traits keyed
// "component/trait". While the linker is enabled those traits drive all
// member apps, so mirroring them mirrors the whole group.
func (l *AppLinker) SharedTraits() map[string]NamedTrait {
	return l.apps[0].SharedTraits()
}
