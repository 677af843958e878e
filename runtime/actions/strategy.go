package actions

import (
	log "github.com/sirupsen/logrus"
	"github.com/teamkeel/dataservice/metrics"
	q "github.com/teamkeel/dataservice/query"
)

const (
	strategyPushDown   = "push_down"
	strategyChunked    = "chunked_scan"
	strategyFullMemory = "full_scan"
)

// filteringResult is the outcome of a filtering strategy.
type filteringResult struct {
	// Number of matching rows before skip was applied.
	total int64
	// Matching rows with skip already applied, not yet truncated to top.
	rows    []*q.Entity
	matched int64
	// Skip still owed after the strategy ran. Strategies apply skip
	// themselves, so this must not be applied again.
	remainingSkip int
}

// applyFilteringStrategy picks how to evaluate the query:
//   - no filter: skip, top and eager loading are pushed down to the store
//   - filter on a large collection: rows are scanned in fixed size chunks
//     to bound memory, counting every match
//   - filter on a small collection: all rows are loaded and filtered at once
func applyFilteringStrategy(scope *Scope, cursor *q.QueryBuilder, predicate q.Predicate, eagerLoad []string, skip int, top int) (*filteringResult, error) {
	totalSize, err := cursor.Count(scope.Context)
	if err != nil {
		return nil, err
	}

	isLarge := totalSize > int64(scope.Options.LargeCollectionThreshold)

	entry := log.WithFields(log.Fields{
		"type":  cursor.Model.Name,
		"total": totalSize,
		"skip":  skip,
	})

	switch {
	case predicate == nil:
		entry.WithField("strategy", strategyPushDown).Debug("filtering strategy selected")
		metrics.StrategySelected.WithLabelValues(strategyPushDown).Inc()
		return pushDown(scope, cursor, eagerLoad, totalSize, skip, top)
	case isLarge:
		entry.WithField("strategy", strategyChunked).Debug("filtering strategy selected")
		metrics.StrategySelected.WithLabelValues(strategyChunked).Inc()
		return chunkedScan(scope, cursor, predicate, eagerLoad, skip, top)
	default:
		entry.WithField("strategy", strategyFullMemory).Debug("filtering strategy selected")
		metrics.StrategySelected.WithLabelValues(strategyFullMemory).Inc()
		return fullScan(scope, cursor, predicate, eagerLoad, skip)
	}
}

func pushDown(scope *Scope, cursor *q.QueryBuilder, eagerLoad []string, totalSize int64, skip int, top int) (*filteringResult, error) {
	cursor.Skip(skip).WithEagerLoad(eagerLoad)
	if top != unbounded {
		cursor.Take(top)
	}

	rows, err := cursor.Materialise(scope.Context)
	if err != nil {
		return nil, err
	}

	return &filteringResult{
		total:   totalSize,
		rows:    rows,
		matched: totalSize,
	}, nil
}

func fullScan(scope *Scope, cursor *q.QueryBuilder, predicate q.Predicate, eagerLoad []string, skip int) (*filteringResult, error) {
	all, err := cursor.WithEagerLoad(eagerLoad).Materialise(scope.Context)
	if err != nil {
		return nil, err
	}
	metrics.RowsScanned.WithLabelValues(cursor.Model.Name).Add(float64(len(all)))

	matched := filter(all, predicate)
	count := int64(len(matched))

	if skip > len(matched) {
		skip = len(matched)
	}

	return &filteringResult{
		total:   count,
		rows:    matched[skip:],
		matched: count,
	}, nil
}

// scanAccumulator collects the result of a chunked scan across batches.
type scanAccumulator struct {
	predicate q.Predicate
	top       int

	rows    []*q.Entity
	matched int64
	skip    int
	scanned int
}

// visit filters one batch. Every match is counted, but matches are only
// retained while the buffer is short of top. Skip is consumed from the
// front of the matches as they arrive.
func (acc *scanAccumulator) visit(batch []*q.Entity) error {
	acc.scanned += len(batch)

	matched := filter(batch, acc.predicate)
	acc.matched += int64(len(matched))

	if len(acc.rows) >= acc.top {
		return nil
	}

	consumed := acc.skip
	if consumed > len(matched) {
		consumed = len(matched)
	}
	acc.skip -= consumed
	acc.rows = append(acc.rows, matched[consumed:]...)

	return nil
}

func chunkedScan(scope *Scope, cursor *q.QueryBuilder, predicate q.Predicate, eagerLoad []string, skip int, top int) (*filteringResult, error) {
	acc := &scanAccumulator{
		predicate: predicate,
		top:       top,
		skip:      skip,
		rows:      []*q.Entity{},
	}

	err := cursor.WithEagerLoad(eagerLoad).Chunk(scope.Context, scope.Options.ChunkSize, acc.visit)
	if err != nil {
		return nil, err
	}
	metrics.RowsScanned.WithLabelValues(cursor.Model.Name).Add(float64(acc.scanned))

	// Drop any leading rows still owed to skip.
	rows := acc.rows
	remaining := acc.skip
	if remaining > 0 {
		dropped := remaining
		if dropped > len(rows) {
			dropped = len(rows)
		}
		rows = rows[dropped:]
		remaining -= dropped
	}

	return &filteringResult{
		total:         acc.matched,
		rows:          rows,
		matched:       acc.matched,
		remainingSkip: remaining,
	}, nil
}

func filter(rows []*q.Entity, predicate q.Predicate) []*q.Entity {
	matched := []*q.Entity{}
	for _, row := range rows {
		if predicate(row) {
			matched = append(matched, row)
		}
	}
	return matched
}
