package stringtable

import "context"

// AudioLookup resolves the existing audio reference attached to a
// string-reference, or "" when the entry carries none.
type AudioLookup interface {
	AudioRef(ctx context.Context, strref int) (string, error)
}

// Oracle caches existing-audio lookups for the lifetime of a run. The same
// string-reference is queried by multiple dialog variants and again during
// duplicate propagation; the underlying table does not change mid-run, so
// each key is resolved at most once. The pipeline is single-threaded, so
// no locking is required.
type Oracle struct {
	lookup AudioLookup
	cache  map[int]string
}

// NewOracle wraps a lookup with a run-lifetime cache.
func NewOracle(lookup AudioLookup) *Oracle {
	return &Oracle{
		lookup: lookup,
		cache:  make(map[int]string),
	}
}

// AudioRef returns the existing audio reference for strref, consulting the
// underlying lookup only on first sight of the key.
func (o *Oracle) AudioRef(ctx context.Context, strref int) (string, error) {
	if ref, ok := o.cache[strref]; ok {
		return ref, nil
	}
	ref, err := o.lookup.AudioRef(ctx, strref)
	if err != nil {
		return "", err
	}
	o.cache[strref] = ref
	return ref, nil
}
