package shape

// Library caches geometry per shape value so identical shapes share one hull.
type Library struct {
	cache map[Shape]*Geometry
}

// NewLibrary creates an empty geometry cache.
func NewLibrary() *Library {
	return &Library{cache: make(map[Shape]*Geometry)}
}

// Get returns the shared geometry for s, building it on first use.
func (l *Library) Get(s Shape) (*Geometry, error) {
	if g, ok := l.cache[s]; ok {
		return g, nil
	}
	g, err := Build(s)
	if err != nil {
		return nil, err
	}
	l.cache[s] = g
	return g, nil
}

// Len returns the number of distinct geometries built so far.
func (l *Library) Len() int {
	return len(l.cache)
}
