package core

// Sync reports which backends accepted a write.
// Cache is false when the cache write failed or had nothing to update
// (e.g. Update of an uncached id). Neither case is an error on its own:
// the caller still gets the result of the remote write.
type Sync struct {
	Remote bool `json:"remote"`
	Cache  bool `json:"cache"`
}
