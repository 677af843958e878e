package infra

import (
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/teamkeel/dataservice/schema"
)

var schemas = cache.New(5*time.Minute, 10*time.Minute)

type cachedSchema struct {
	schema  *schema.Schema
	modTime time.Time
}

// GetSchema loads the schema file at path, reusing a previously loaded
// schema until the file changes or the cache entry expires.
func GetSchema(path string) (*schema.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if v, ok := schemas.Get(path); ok {
		cached := v.(cachedSchema)
		if cached.modTime.Equal(info.ModTime()) {
			return cached.schema, nil
		}
	}

	s, err := schema.Load(path)
	if err != nil {
		return nil, err
	}

	schemas.Set(path, cachedSchema{schema: s, modTime: info.ModTime()}, cache.DefaultExpiration)
	return s, nil
}
