package cache

import "github.com/farmtech/go-silo-cache/internal/key"

// tagIndex is the in-process many-to-many association between tag names and
// live digests. It covers every live entry in either tier (rebuilt from the
// persisted tag rows at startup) and is mutated only under the manager lock,
// in the same logical operation as the entry itself.
type tagIndex struct {
	byTag map[string]map[key.Key]struct{}
	byKey map[key.Key][]string
}

func newTagIndex() *tagIndex {
	return &tagIndex{
		byTag: make(map[string]map[key.Key]struct{}),
		byKey: make(map[key.Key][]string),
	}
}

// add replaces the key's associations with the given tag set.
func (t *tagIndex) add(k key.Key, tags []string) {
	t.removeKey(k)
	if len(tags) == 0 {
		return
	}
	for _, tag := range tags {
		bucket, ok := t.byTag[tag]
		if !ok {
			bucket = make(map[key.Key]struct{})
			t.byTag[tag] = bucket
		}
		bucket[k] = struct{}{}
	}
	t.byKey[k] = tags
}

func (t *tagIndex) removeKey(k key.Key) {
	for _, tag := range t.byKey[k] {
		bucket := t.byTag[tag]
		delete(bucket, k)
		if len(bucket) == 0 {
			delete(t.byTag, tag)
		}
	}
	delete(t.byKey, k)
}

// keysFor returns the union of digests tagged with any of the given tags.
func (t *tagIndex) keysFor(tags []string) map[key.Key]struct{} {
	out := make(map[key.Key]struct{})
	for _, tag := range tags {
		for k := range t.byTag[tag] {
			out[k] = struct{}{}
		}
	}
	return out
}
