package ffalloc

import "sort"

// table maps ids to their allocated ranges
type table struct {
	m map[string]AllocatedBlock
}

func newTable() *table {
	return &table{m: make(map[string]AllocatedBlock)}
}

func (t *table) store(b AllocatedBlock) {
	t.m[b.ID] = b
}

func (t *table) load(id string) (AllocatedBlock, bool) {
	b, ok := t.m[id]
	return b, ok
}

func (t *table) loadAndDelete(id string) (AllocatedBlock, bool) {
	b, ok := t.m[id]
	if ok {
		delete(t.m, id)
	}
	return b, ok
}

// sorted returns the allocated blocks in address order
func (t *table) sorted() []AllocatedBlock {
	bs := make([]AllocatedBlock, 0, len(t.m))
	for _, b := range t.m {
		bs = append(bs, b)
	}
	sort.Slice(bs, func(i, j int) bool {
		return bs[i].Start < bs[j].Start
	})
	return bs
}
