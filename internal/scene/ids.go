// internal/scene/ids.go
package scene

import "fmt"

// Id prefixes used by the built-in producers
const (
	PillarPrefix = "pillar"
	SpherePrefix = "sphere"
	NodePrefix   = "node"
	EdgePrefix   = "edge"
	TilePrefix   = "tile"
	OrbPrefix    = "orb"
)

// PillarID returns the id of the bar at index i
func PillarID(i int) string {
	return fmt.Sprintf("%s-%d", PillarPrefix, i)
}

// SphereID returns the id of the sphere at index i
func SphereID(i int) string {
	return fmt.Sprintf("%s-%d", SpherePrefix, i)
}

// OrbID returns the id of the orb at index i
func OrbID(i int) string {
	return fmt.Sprintf("%s-%d", OrbPrefix, i)
}

// NodeID returns the id of a graph node entity
func NodeID(node string) string {
	return NodePrefix + "-" + node
}

// EdgeID returns the id of the connector between two graph nodes
func EdgeID(from, to string) string {
	return EdgePrefix + "-" + from + "-" + to
}

// TileID returns the id of a grid tile
func TileID(tile string) string {
	return TilePrefix + "-" + tile
}

// CellKey formats grid coordinates the way tile ids expect them
func CellKey(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// IndexOf returns the list position of the entity with the given id, or -1
func IndexOf(entities []Entity, id string) int {
	for i := range entities {
		if entities[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer into entities for the given id, or nil
func Find(entities []Entity, id string) *Entity {
	if i := IndexOf(entities, id); i >= 0 {
		return &entities[i]
	}
	return nil
}

// At returns a pointer to the entity at list position i, or nil when out of range
func At(entities []Entity, i int) *Entity {
	if i < 0 || i >= len(entities) {
		return nil
	}
	return &entities[i]
}
