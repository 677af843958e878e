package actions

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/teamkeel/dataservice/runtime/common"
)

// Authoriser decides whether the caller can read a subject. The subject is
// a *schema.ResourceType for a whole collection, an *EntitySource for a
// relation of one entity, or a *query.Entity for a single entity.
type Authoriser interface {
	CanAuthoriseRead(ctx context.Context, typeName string, subject any) (bool, error)
}

// AllowAll is an Authoriser which grants every read.
type AllowAll struct{}

func (AllowAll) CanAuthoriseRead(context.Context, string, any) (bool, error) {
	return true, nil
}

// AuthoriseRead runs the read authorisation gate, returning a permission
// error if the subject cannot be read.
func AuthoriseRead(scope *Scope, typeName string, subject any) error {
	if scope.Authoriser == nil {
		return common.NewPermissionError()
	}

	isAuthorised, err := scope.Authoriser.CanAuthoriseRead(scope.Context, typeName, subject)
	if err != nil {
		return err
	}

	if !isAuthorised {
		log.WithField("type", typeName).Debug("read not authorised")
		return common.NewPermissionError()
	}

	return nil
}
