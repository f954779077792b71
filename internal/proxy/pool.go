package proxy

// Pool is an arena of proxies addressed by stable IDs. Removed slots are
// reused by later Adds.
type Pool struct {
	items []Proxy
	live  []bool
	free  []ID
	count int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add stores p and returns its handle.
func (pl *Pool) Add(p Proxy) ID {
	pl.count++
	if n := len(pl.free); n > 0 {
		id := pl.free[n-1]
		pl.free = pl.free[:n-1]
		pl.items[id] = p
		pl.live[id] = true
		return id
	}
	pl.items = append(pl.items, p)
	pl.live = append(pl.live, true)
	return ID(len(pl.items) - 1)
}

// Get returns the proxy for id, or nil if id is not live.
// The pointer is invalidated by the next Add.
func (pl *Pool) Get(id ID) *Proxy {
	if !pl.Live(id) {
		return nil
	}
	return &pl.items[id]
}

// Live reports whether id refers to a stored proxy.
func (pl *Pool) Live(id ID) bool {
	return id >= 0 && int(id) < len(pl.items) && pl.live[id]
}

// Remove releases id. The caller must detach it from the partition first.
func (pl *Pool) Remove(id ID) bool {
	if !pl.Live(id) {
		return false
	}
	pl.items[id] = Proxy{Node: NoNode}
	pl.live[id] = false
	pl.free = append(pl.free, id)
	pl.count--
	return true
}

// Len returns the number of live proxies.
func (pl *Pool) Len() int {
	return pl.count
}

// Each calls fn for every live proxy in ID order until fn returns false.
func (pl *Pool) Each(fn func(id ID, p *Proxy) bool) {
	for i := range pl.items {
		if !pl.live[i] {
			continue
		}
		if !fn(ID(i), &pl.items[i]) {
			return
		}
	}
}
