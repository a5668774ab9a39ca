package codec

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps transfer syntax UIDs to frame codecs. Codecs can also be
// found by name.
type Registry struct {
	mu     sync.RWMutex
	byUID  map[string]Codec
	byName map[string]Codec
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byUID: make(map[string]Codec), byName: make(map[string]Codec)}
}

var defaultRegistry = NewRegistry()

// Default returns the registry the codec packages register into from init.
func Default() *Registry { return defaultRegistry }

// Register adds c to the default registry
func Register(c Codec) { defaultRegistry.Register(c) }

// Get looks a codec up in the default registry
func Get(nameOrUID string) (Codec, error) { return defaultRegistry.Get(nameOrUID) }

// Lookup finds the codec for uid in the default registry or in go-dicom
func Lookup(uid string) (Codec, error) { return defaultRegistry.Lookup(uid) }

// List returns the codecs of the default registry
func List() []Codec { return defaultRegistry.List() }

// Register adds c, replacing any codec with the same UID or name.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUID[c.UID()] = c
	r.byName[c.Name()] = c
}

// Get returns the codec registered for a UID, or else for a name.
func (r *Registry) Get(nameOrUID string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byUID[nameOrUID]; ok {
		return c, nil
	}
	if c, ok := r.byName[nameOrUID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCodecNotFound, nameOrUID)
}

// Lookup returns the codec for a transfer syntax UID. When the registry has
// none, a codec registered in the go-dicom global registry is adapted.
func (r *Registry) Lookup(uid string) (Codec, error) {
	r.mu.RLock()
	c, ok := r.byUID[uid]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}
	return external(uid)
}

// List returns the registered codecs ordered by UID
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codecs := make([]Codec, 0, len(r.byUID))
	for _, c := range r.byUID {
		codecs = append(codecs, c)
	}
	slices.SortFunc(codecs, func(a, b Codec) int { return strings.Compare(a.UID(), b.UID()) })
	return codecs
}
