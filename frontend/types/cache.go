package types

// subtypeCache memoises subtype results of one analyzer scope, keyed by the
// canonicalised (sub, super) pair. Lookups read through to the parent scope.
//
// The nil *subtypeCache is the root: it never hits and drops every write.
type subtypeCache struct {
	parent  *subtypeCache
	entries map[uint64]cacheEntry
}

type cacheEntry struct {
	pair   typePair
	result ConstraintFormula
}

func newSubtypeCache(parent *subtypeCache) *subtypeCache {
	return &subtypeCache{parent: parent, entries: make(map[uint64]cacheEntry)}
}

func (c *subtypeCache) get(sub, super Type) (ConstraintFormula, bool) {
	key := typePair{sub, super}
	for scope := c; scope != nil; scope = scope.parent {
		if res, ok := scope.lookup(key); ok {
			return res, true
		}
	}
	return nil, false
}

// getLocal is get without reading through to the parent scopes
func (c *subtypeCache) getLocal(sub, super Type) (ConstraintFormula, bool) {
	if c == nil {
		return nil, false
	}
	return c.lookup(typePair{sub, super})
}

func (c *subtypeCache) lookup(key typePair) (ConstraintFormula, bool) {
	if entry, ok := c.entries[key.Hash()]; ok && (pairHasher{}).Equal(entry.pair, key) {
		return entry.result, true
	}
	return nil, false
}

func (c *subtypeCache) put(sub, super Type, result ConstraintFormula) {
	if c == nil {
		return
	}
	key := typePair{sub, super}
	c.entries[key.Hash()] = cacheEntry{pair: key, result: result}
}

// size counts the entries of this scope only
func (c *subtypeCache) size() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
