package actions

import (
	"context"

	"github.com/teamkeel/dataservice/schema"
	"gorm.io/gorm"
)

const (
	// DefaultLargeCollectionThreshold is the collection size above which a
	// filtered query is evaluated in chunks rather than in one pass.
	DefaultLargeCollectionThreshold = 20000
	DefaultChunkSize                = 5000
)

type Options struct {
	LargeCollectionThreshold int
	ChunkSize                int
}

func DefaultOptions() Options {
	return Options{
		LargeCollectionThreshold: DefaultLargeCollectionThreshold,
		ChunkSize:                DefaultChunkSize,
	}
}

// Scope carries everything an action needs to execute one call.
type Scope struct {
	Context    context.Context
	Schema     *schema.Schema
	Database   *gorm.DB
	Authoriser Authoriser
	Options    Options
}

func NewScope(ctx context.Context, s *schema.Schema, db *gorm.DB, authoriser Authoriser, options Options) *Scope {
	if options.LargeCollectionThreshold <= 0 {
		options.LargeCollectionThreshold = DefaultLargeCollectionThreshold
	}
	if options.ChunkSize <= 0 {
		options.ChunkSize = DefaultChunkSize
	}

	return &Scope{
		Context:    ctx,
		Schema:     s,
		Database:   db,
		Authoriser: authoriser,
		Options:    options,
	}
}

func (s *Scope) WithContext(ctx context.Context) *Scope {
	return &Scope{
		Context:    ctx,
		Schema:     s.Schema,
		Database:   s.Database,
		Authoriser: s.Authoriser,
		Options:    s.Options,
	}
}
