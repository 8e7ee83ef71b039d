package csapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/central-storage/csclient/internal/constants"
)

// HierarchyDependencies maps each hierarchy resource type to the types it references.
var HierarchyDependencies = map[ResourceType][]ResourceType{
	ResourceLaboratory: {},
	ResourceStorage:    {ResourceLaboratory},
	ResourceSection:    {ResourceStorage},
	ResourceItem:       {ResourceSection},
}

// CreationOrder sorts resource types so every type comes after the types it depends on.
func CreationOrder(dependencies map[ResourceType][]ResourceType) ([]ResourceType, error) {
	inDegree := make(map[ResourceType]int, len(dependencies))
	dependents := make(map[ResourceType][]ResourceType, len(dependencies))

	for rt, deps := range dependencies {
		if _, ok := inDegree[rt]; !ok {
			inDegree[rt] = 0
		}

		for _, dep := range deps {
			if _, ok := inDegree[dep]; !ok {
				inDegree[dep] = 0
			}

			inDegree[rt]++
			dependents[dep] = append(dependents[dep], rt)
		}
	}

	var queue []ResourceType

	for rt, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, rt)
		}
	}

	sortTypes(queue)

	sorted := make([]ResourceType, 0, len(inDegree))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		var ready []ResourceType

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}

		sortTypes(ready)
		queue = append(queue, ready...)
	}

	if len(sorted) != len(inDegree) {
		return nil, fmt.Errorf("%w: sorted %d of %d types", ErrDependencyCycle, len(sorted), len(inDegree))
	}

	return sorted, nil
}

// DeletionOrder sorts resource types so every type comes before the types it depends on.
func DeletionOrder(dependencies map[ResourceType][]ResourceType) ([]ResourceType, error) {
	order, err := CreationOrder(dependencies)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}

func sortTypes(types []ResourceType) {
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
}

// PhaseReport is the outcome of deleting every instance of one resource type.
type PhaseReport struct {
	Resource ResourceType   `json:"resource" yaml:"resource"`
	Found    int            `json:"found"    yaml:"found"`
	Deleted  int            `json:"deleted"  yaml:"deleted"`
	Failed   []BatchFailure `json:"failed"   yaml:"failed"`
	Err      error          `json:"-"        yaml:"-"`
}

// PurgeReport is the outcome of PurgeAll.
//
// Success is false only when the purge could not run to completion (a listing
// failed or the context ended). Individual delete failures do not clear it;
// they are listed per phase so callers can apply their own threshold. A delete
// answered with 404 counts as deleted.
type PurgeReport struct {
	Confirmed bool          `json:"confirmed" yaml:"confirmed"`
	Success   bool          `json:"success"   yaml:"success"`
	Phases    []PhaseReport `json:"phases"    yaml:"phases"`
}

// PurgeFailure is one failed delete.
type PurgeFailure struct {
	Resource ResourceType
	BatchFailure
}

// Failures flattens the per-phase failures in phase order.
func (r *PurgeReport) Failures() []PurgeFailure {
	var failures []PurgeFailure

	for _, phase := range r.Phases {
		for _, failure := range phase.Failed {
			failures = append(failures, PurgeFailure{Resource: phase.Resource, BatchFailure: failure})
		}
	}

	return failures
}

// DeletedCount sums deletions over every phase.
func (r *PurgeReport) DeletedCount() int {
	total := 0
	for _, phase := range r.Phases {
		total += phase.Deleted
	}

	return total
}

// Clean reports whether the purge ran to completion without a single failed delete.
func (r *PurgeReport) Clean() bool {
	return r.Success && len(r.Failures()) == 0
}

// PurgeOptions configures a Purger.
type PurgeOptions struct {
	Logger   Logger
	PageSize int
	MaxPages int
	// Concurrency bounds parallel deletes within one phase. A phase is always
	// drained before the next one starts.
	Concurrency int
}

// PurgeOption mutates PurgeOptions.
type PurgeOption func(*PurgeOptions)

// WithPurgeLogger sets the logger.
func WithPurgeLogger(logger Logger) PurgeOption {
	return func(o *PurgeOptions) {
		o.Logger = logger
	}
}

// WithPurgePageSize sets the page size used to enumerate each type.
func WithPurgePageSize(size int) PurgeOption {
	return func(o *PurgeOptions) {
		o.PageSize = size
	}
}

// WithPurgeConcurrency allows up to n deletes in flight within a phase.
func WithPurgeConcurrency(n int) PurgeOption {
	return func(o *PurgeOptions) {
		o.Concurrency = n
	}
}

// Purger deletes every resource of the hierarchy, children first.
type Purger struct {
	client  HierarchyClients
	options PurgeOptions
}

// NewPurger creates a purger.
func NewPurger(client HierarchyClients, opts ...PurgeOption) *Purger {
	options := PurgeOptions{
		PageSize:    constants.LargePageSize,
		MaxPages:    constants.DefaultMaxPages,
		Concurrency: 1,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Concurrency < 1 {
		options.Concurrency = 1
	}

	return &Purger{client: client, options: options}
}

type purgeTarget struct {
	collect func(ctx context.Context) ([]int, error)
	remove  func(ctx context.Context, id int) error
}

func (p *Purger) target(rt ResourceType) (purgeTarget, error) {
	opts := &PaginationOptions{PageSize: p.options.PageSize, MaxPages: p.options.MaxPages}

	switch rt {
	case ResourceItem:
		items := p.client.Items()

		return purgeTarget{collect: collectIDs[Item](items, opts), remove: items.Delete}, nil
	case ResourceSection:
		sections := p.client.Sections()

		return purgeTarget{collect: collectIDs[Section](sections, opts), remove: sections.Delete}, nil
	case ResourceStorage:
		storages := p.client.Storages()

		return purgeTarget{collect: collectIDs[Storage](storages, opts), remove: storages.Delete}, nil
	case ResourceLaboratory:
		labs := p.client.Laboratories()

		return purgeTarget{collect: collectIDs[Laboratory](labs, opts), remove: labs.Delete}, nil
	default:
		return purgeTarget{}, fmt.Errorf("%w: %s", ErrUnknownResourceType, rt)
	}
}

// collectIDs enumerates every id up front so deletions cannot shift later pages.
func collectIDs[T Identifiable](lister Lister[T], opts *PaginationOptions) func(ctx context.Context) ([]int, error) {
	return func(ctx context.Context) ([]int, error) {
		var ids []int

		err := NewPaginationIteratorWithOptions(ctx, lister, NewQueryParams(), opts).ForEach(func(record T) error {
			if id := record.GetID(); id > 0 {
				ids = append(ids, id)
			}

			return nil
		})

		return ids, err
	}
}

// PurgeAll deletes every item, then every section, storage and laboratory.
//
// Without confirmation nothing is deleted and the report has Confirmed=false.
// A listing failure stops the purge and is returned as an error wrapping
// ErrPurgePhaseFailed together with the partial report.
func (p *Purger) PurgeAll(ctx context.Context, confirmed bool) (*PurgeReport, error) {
	report := &PurgeReport{Confirmed: confirmed}

	if !confirmed {
		p.logWarn("purge requires confirmation, nothing deleted", nil)

		return report, nil
	}

	order, err := DeletionOrder(HierarchyDependencies)
	if err != nil {
		return report, err
	}

	for _, rt := range order {
		phase := p.runPhase(ctx, rt)
		report.Phases = append(report.Phases, phase)

		if phase.Err != nil {
			p.logError("purge aborted", map[string]interface{}{"resource": string(rt), "error": phase.Err.Error()})

			return report, fmt.Errorf("%w: %s: %w", ErrPurgePhaseFailed, rt, phase.Err)
		}
	}

	report.Success = true

	p.logInfo("purge finished", map[string]interface{}{
		"deleted": report.DeletedCount(),
		"failed":  len(report.Failures()),
	})

	return report, nil
}

func (p *Purger) runPhase(ctx context.Context, rt ResourceType) PhaseReport {
	phase := PhaseReport{Resource: rt}

	target, err := p.target(rt)
	if err != nil {
		phase.Err = err

		return phase
	}

	ids, err := target.collect(ctx)
	if err != nil {
		phase.Err = fmt.Errorf("listing %s: %w", rt, err)

		return phase
	}

	phase.Found = len(ids)
	p.logInfo("purge phase started", map[string]interface{}{"resource": string(rt), "count": len(ids)})

	var (
		mu        sync.Mutex
		waitGroup sync.WaitGroup
	)

	semaphore := make(chan struct{}, p.options.Concurrency)

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}

		semaphore <- struct{}{}

		waitGroup.Add(1)

		go func(index, id int) {
			defer waitGroup.Done()
			defer func() { <-semaphore }()

			err := target.remove(ctx, id)

			mu.Lock()
			defer mu.Unlock()

			// A retried delete whose first attempt was applied comes back 404.
			if err != nil && IsNotFound(err) {
				p.logInfo("purge target already gone", map[string]interface{}{"resource": string(rt), "id": id})

				err = nil
			}

			if err != nil {
				phase.Failed = append(phase.Failed, BatchFailure{Index: index, ID: id, Err: err})
				p.logWarn("purge delete failed", map[string]interface{}{"resource": string(rt), "id": id, "error": err.Error()})

				return
			}

			phase.Deleted++
		}(i+1, id)
	}

	waitGroup.Wait()

	sort.Slice(phase.Failed, func(i, j int) bool { return phase.Failed[i].Index < phase.Failed[j].Index })

	if ctxErr := ctx.Err(); ctxErr != nil {
		phase.Err = ctxErr
	}

	return phase
}

func (p *Purger) logInfo(msg string, fields map[string]interface{}) {
	if p.options.Logger != nil {
		p.options.Logger.Info(msg, fields)
	}
}

func (p *Purger) logWarn(msg string, fields map[string]interface{}) {
	if p.options.Logger != nil {
		p.options.Logger.Warn(msg, fields)
	}
}

func (p *Purger) logError(msg string, fields map[string]interface{}) {
	if p.options.Logger != nil {
		p.options.Logger.Error(msg, fields)
	}
}

// IsPurgeAborted reports whether err came from a purge phase that could not complete.
func IsPurgeAborted(err error) bool {
	return errors.Is(err, ErrPurgePhaseFailed)
}
