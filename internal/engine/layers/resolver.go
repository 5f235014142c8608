package layers

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"layerguard/internal/core/config"
	"layerguard/internal/shared/util"
)

const defaultCacheSize = 4096

type resolution struct {
	layer string
	ok    bool
}

// Resolver maps file paths to the layer whose name appears as a directory
// segment. Layers are tried in config order and the first match wins, so a
// path naming two layers belongs to whichever was declared first.
type Resolver struct {
	names []string
	cache *lru.Cache[string, resolution]
}

func NewResolver(cfg *config.ArchitectureConfig) *Resolver {
	cache, err := lru.New[string, resolution](defaultCacheSize)
	if err != nil {
		// Only a non-positive size errors.
		panic(err)
	}
	return &Resolver{names: cfg.LayerNames(), cache: cache}
}

// Resolve returns the layer owning filePath, or false for unlayered files.
func (r *Resolver) Resolve(filePath string) (string, bool) {
	key := util.ToSlash(filePath)
	if hit, ok := r.cache.Get(key); ok {
		return hit.layer, hit.ok
	}
	res := resolution{}
	for _, name := range r.names {
		if util.HasSegment(key, name) {
			res = resolution{layer: name, ok: true}
			break
		}
	}
	r.cache.Add(key, res)
	return res.layer, res.ok
}
