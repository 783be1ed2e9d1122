package worlds

// World is a player population unit. Worlds are the unit a watcher targets.
type World struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Map is a named zone that hosts events.
type Map struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SameWorld reports whether a and b identify the same world. Names are ignored.
func SameWorld(a, b World) bool {
	return a.ID == b.ID
}
