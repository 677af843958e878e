package runtime

import (
	"context"
	"os"
	"time"

	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"
	"github.com/teamkeel/dataservice/metrics"
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/actions"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/teamkeel/dataservice/runtime")
var Version string

func init() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(logLevel())
}

func GetVersion() string {
	return Version
}

// Runtime exposes the read query entry points over one schema and database.
type Runtime struct {
	schema     *schema.Schema
	database   *gorm.DB
	authoriser actions.Authoriser
	options    actions.Options
}

func New(s *schema.Schema, db *gorm.DB, authoriser actions.Authoriser, options actions.Options) *Runtime {
	return &Runtime{
		schema:     s,
		database:   db,
		authoriser: authoriser,
		options:    options,
	}
}

func (r *Runtime) scope(ctx context.Context) *actions.Scope {
	return actions.NewScope(ctx, r.schema, r.database, r.authoriser, r.options)
}

// ListResourceSet queries a resource set, or the relation of a source if given.
func (r *Runtime) ListResourceSet(ctx context.Context, input actions.ListInput) (res *actions.QueryResult, err error) {
	ctx, span := tracer.Start(ctx, "List resource set")
	defer span.End()
	defer observe(span, tagRequest(span), "list", time.Now(), &err)

	span.SetAttributes(
		attribute.String("resource_set", input.ResourceSet),
		attribute.String("query_kind", input.Kind.String()),
	)

	res, err = actions.List(r.scope(ctx), input)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("rows", len(res.Rows)),
		attribute.Bool("has_more", res.HasMore),
	)

	return res, nil
}

// GetResourceByKey returns the resource with the given key, or nil if there is none.
func (r *Runtime) GetResourceByKey(ctx context.Context, resourceSet string, key q.KeyDescriptor, expand []string) (res *q.Entity, err error) {
	ctx, span := tracer.Start(ctx, "Get resource")
	defer span.End()
	defer observe(span, tagRequest(span), "get", time.Now(), &err)

	span.SetAttributes(attribute.String("resource_set", resourceSet))

	res, err = actions.Get(r.scope(ctx), actions.GetInput{
		ResourceSet: resourceSet,
		Key:         key,
		Expand:      expand,
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("found", res != nil))
	return res, nil
}

// GetRelatedSet queries the entities reachable through a to-many navigation property.
func (r *Runtime) GetRelatedSet(ctx context.Context, related actions.RelatedInput, input actions.ListInput) (res *actions.QueryResult, err error) {
	ctx, span := tracer.Start(ctx, "Get related set")
	defer span.End()
	defer observe(span, tagRequest(span), "related_set", time.Now(), &err)

	span.SetAttributes(attribute.String("navigation", related.Navigation))

	return actions.ListRelated(r.scope(ctx), related, input)
}

// GetRelatedReference follows a to-one navigation property.
func (r *Runtime) GetRelatedReference(ctx context.Context, related actions.RelatedInput) (res *q.Entity, err error) {
	ctx, span := tracer.Start(ctx, "Get related reference")
	defer span.End()
	defer observe(span, tagRequest(span), "related_reference", time.Now(), &err)

	span.SetAttributes(attribute.String("navigation", related.Navigation))

	return actions.GetRelatedReference(r.scope(ctx), related)
}

// GetRelatedByKey looks up one entity by key among those reachable through a navigation property.
func (r *Runtime) GetRelatedByKey(ctx context.Context, related actions.RelatedInput, key q.KeyDescriptor) (res *q.Entity, err error) {
	ctx, span := tracer.Start(ctx, "Get related by key")
	defer span.End()
	defer observe(span, tagRequest(span), "related_by_key", time.Now(), &err)

	span.SetAttributes(attribute.String("navigation", related.Navigation))

	return actions.GetFromRelatedSet(r.scope(ctx), related, key)
}

// tagRequest gives the call an id which correlates its span with its log lines.
func tagRequest(span trace.Span) string {
	id := ksuid.New().String()
	span.SetAttributes(attribute.String("request_id", id))
	return id
}

func observe(span trace.Span, requestID string, operation string, start time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
		if common.IsCode(*err, common.ErrPermissionDenied) {
			status = "denied"
		}

		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())

		log.WithFields(log.Fields{
			"request_id": requestID,
			"operation":  operation,
			"status":     common.HTTPStatus(*err),
		}).WithError(*err).Info("query failed")
	}

	metrics.QueryDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

func logLevel() log.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.ErrorLevel
	}
}
