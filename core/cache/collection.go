package cache

// Collection is a JSON array snapshot of entities stored under one key.
// Lookups are linear scans over the whole snapshot.
type Collection[E any] struct {
	store Store
	key   string
	id    func(E) string
}

func NewCollection[E any](store Store, key string, id func(E) string) *Collection[E] {
	return &Collection[E]{store: store, key: key, id: id}
}

// All returns the whole snapshot (empty when none was ever stored).
func (c *Collection[E]) All() ([]E, error) {
	return Get(c.store, c.key, []E{})
}

// Filter returns the entities matching pred, in snapshot order.
func (c *Collection[E]) Filter(pred func(E) bool) ([]E, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(all))
	for _, e := range all {
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Find returns the first entity matching pred.
func (c *Collection[E]) Find(pred func(E) bool) (e E, found bool, err error) {
	all, err := c.All()
	if err != nil {
		return e, false, err
	}
	for _, item := range all {
		if pred(item) {
			return item, true, nil
		}
	}
	return e, false, nil
}

// FindByID returns the entity with the given id.
func (c *Collection[E]) FindByID(id string) (E, bool, error) {
	return c.Find(func(e E) bool { return c.id(e) == id })
}

// Replace overwrites the snapshot with items.
func (c *Collection[E]) Replace(items []E) error {
	if items == nil {
		items = []E{}
	}
	return Set(c.store, c.key, items)
}

// ReplaceWhere overwrites only the part of the snapshot matching pred with items;
// entities outside that partition are kept as they are.
func (c *Collection[E]) ReplaceWhere(pred func(E) bool, items []E) error {
	if pred == nil {
		return c.Replace(items)
	}
	return Modify(c.store, c.key, []E{}, func(all *[]E) (bool, error) {
		kept := make([]E, 0, len(*all)+len(items))
		for _, e := range *all {
			if !pred(e) {
				kept = append(kept, e)
			}
		}
		*all = append(kept, items...)
		return true, nil
	})
}

// Append adds items at the end of the snapshot.
func (c *Collection[E]) Append(items ...E) error {
	return Modify(c.store, c.key, []E{}, func(all *[]E) (bool, error) {
		*all = append(*all, items...)
		return true, nil
	})
}

// Update replaces the entity sharing item's id. It reports false and writes
// nothing when no such entity is cached.
func (c *Collection[E]) Update(item E) (bool, error) {
	var found bool
	err := Modify(c.store, c.key, []E{}, func(all *[]E) (bool, error) {
		id := c.id(item)
		for i, e := range *all {
			if c.id(e) == id {
				(*all)[i] = item
				found = true
			}
		}
		return found, nil
	})
	return found, err
}

// Upsert replaces the entity sharing item's id, or appends item when none is cached.
func (c *Collection[E]) Upsert(item E) error {
	return Modify(c.store, c.key, []E{}, func(all *[]E) (bool, error) {
		id := c.id(item)
		for i, e := range *all {
			if c.id(e) == id {
				(*all)[i] = item
				return true, nil
			}
		}
		*all = append(*all, item)
		return true, nil
	})
}

// Remove drops the entity with the given id, reporting whether it was cached.
func (c *Collection[E]) Remove(id string) (bool, error) {
	var found bool
	err := Modify(c.store, c.key, []E{}, func(all *[]E) (bool, error) {
		kept := (*all)[:0]
		for _, e := range *all {
			if c.id(e) == id {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		*all = kept
		return found, nil
	})
	return found, err
}
