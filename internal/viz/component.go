// Package viz assembles datasets, widgets and the terrain scene into viewer
// applications whose control state can be linked across instances.
package viz

import "github.com/fastscape-lem/topoviz/internal/trait"

// NamedTrait is a linkable trait with a stable name inside its component.
type NamedTrait struct {
	Name  string
	Trait trait.Linkable
}

// Component is a named group of controls attached to a viewer app. Traits
// returned by LinkableTraits are synchronized by AppLinker with the
// equally-named traits of the same component on other apps.
type Component interface {
	Name() string
	LinkableTraits() []NamedTrait
}
