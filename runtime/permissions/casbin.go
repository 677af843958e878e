package permissions

import (
	"context"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	log "github.com/sirupsen/logrus"
	"github.com/teamkeel/dataservice/runtime/runtimectx"
)

// readModel grants access by role and resource type; "*" matches any type.
const readModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && r.act == p.act
`

const readAction = "read"

// Enforcer authorises reads by the role of the identity on the context and
// the name of the resource type being read.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// NewEnforcer creates an enforcer with no policies, which denies everything.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(readModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: e}, nil
}

// NewEnforcerFromFile creates an enforcer with policies loaded from a CSV
// file of "p, role, type, read" lines.
func NewEnforcerFromFile(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(readModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, policyPath)
	if err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: e}, nil
}

// AllowRead grants role read access to the resource type, or to every type with "*".
func (e *Enforcer) AllowRead(role string, typeName string) error {
	_, err := e.enforcer.AddPolicy(role, typeName, readAction)
	return err
}

func (e *Enforcer) CanAuthoriseRead(ctx context.Context, typeName string, subject any) (bool, error) {
	identity := runtimectx.GetIdentity(ctx)

	allowed, err := e.enforcer.Enforce(identity.Role, typeName, readAction)
	log.WithFields(log.Fields{
		"role":    identity.Role,
		"type":    typeName,
		"allowed": allowed,
	}).Trace("read authorisation")

	return allowed, err
}
