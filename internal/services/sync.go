package services

import (
	"context"
	"time"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

// RunOptions applies to one synchronization pass.
type RunOptions struct {
	Simulation     bool
	PrintStructure bool
}

// LoadResult reports a build-and-resolve pass. Status and SessionID are
// filled by the HTTP layer; the CLI leaves them empty so its report carries
// only the run totals.
type LoadResult struct {
	Status        string                 `json:"status,omitempty"`
	SessionID     string                 `json:"session_id,omitempty"`
	FoundExisting int                    `json:"found_existing"`
	CreatedNew    int                    `json:"created_new"`
	TotalNodes    int                    `json:"total_nodes"`
	Simulation    bool                   `json:"simulation"`
	Structure     []hierarchy.NodeRecord `json:"structure,omitempty"`
}

// OrderResult reports an ordering-enforcement pass.
type OrderResult struct {
	Status         string                 `json:"status,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	ProcessedNodes int                    `json:"processed_nodes"`
	TotalNodes     int                    `json:"total_nodes"`
	Simulation     bool                   `json:"simulation"`
	Structure      []hierarchy.NodeRecord `json:"structure,omitempty"`
}

// RunResult reports a full chain: build, resolve, enforce.
type RunResult struct {
	Status         string                 `json:"status,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	FoundExisting  int                    `json:"found_existing"`
	CreatedNew     int                    `json:"created_new"`
	ProcessedNodes int                    `json:"processed_nodes"`
	TotalNodes     int                    `json:"total_nodes"`
	Simulation     bool                   `json:"simulation"`
	Structure      []hierarchy.NodeRecord `json:"structure,omitempty"`
}

// SyncService chains the synchronization passes over a caller-owned graph.
// Load and Run fold rows into g; callers hand in a fresh graph and adopt it
// only when the pass succeeds, so a failed pass commits nothing.
type SyncService interface {
	Load(ctx context.Context, g *hierarchy.Graph, rows []hierarchy.Row, opts RunOptions) (*LoadResult, error)
	Order(ctx context.Context, g *hierarchy.Graph, opts RunOptions) (*OrderResult, error)
	Run(ctx context.Context, g *hierarchy.Graph, rows []hierarchy.Row, opts RunOptions) (*RunResult, error)
}

type syncService struct {
	log      *logger.Logger
	resolver IdentityResolver
	orderer  OrderEnforcer
}

func NewSyncService(log *logger.Logger, resolver IdentityResolver, orderer OrderEnforcer) SyncService {
	return &syncService{
		log:      log.With("service", "SyncService"),
		resolver: resolver,
		orderer:  orderer,
	}
}

func (s *syncService) Load(ctx context.Context, g *hierarchy.Graph, rows []hierarchy.Row, opts RunOptions) (*LoadResult, error) {
	start := time.Now()
	hierarchy.AppendRows(g, rows)

	res, err := s.resolver.Resolve(ctx, g, opts.Simulation)
	if err != nil {
		observeSyncPhase("load", "failed", start)
		return nil, err
	}

	s.log.Info("Hierarchy loaded",
		"rows", len(rows),
		"nodes", g.Len(),
		"found_existing", res.Found,
		"created_new", res.Created,
		"simulation", opts.Simulation,
	)
	observeSyncPhase("load", "ok", start)
	recordResolutionOutcomes(res, opts.Simulation, g.Len())

	out := &LoadResult{
		FoundExisting: res.Found,
		CreatedNew:    res.Created,
		TotalNodes:    g.Len(),
		Simulation:    opts.Simulation,
	}
	if opts.PrintStructure {
		out.Structure = g.Snapshot()
	}
	return out, nil
}

func (s *syncService) Order(ctx context.Context, g *hierarchy.Graph, opts RunOptions) (*OrderResult, error) {
	start := time.Now()
	processed, err := s.orderer.Enforce(ctx, g, opts.Simulation)
	if err != nil {
		observeSyncPhase("order", "failed", start)
		return nil, err
	}

	s.log.Info("Ordering enforced",
		"processed_nodes", processed,
		"nodes", g.Len(),
		"simulation", opts.Simulation,
	)
	observeSyncPhase("order", "ok", start)
	if !opts.Simulation {
		if metrics := observability.Current(); metrics != nil {
			metrics.AddNodeOutcomes("patched", processed)
		}
	}

	out := &OrderResult{
		ProcessedNodes: processed,
		TotalNodes:     g.Len(),
		Simulation:     opts.Simulation,
	}
	if opts.PrintStructure {
		out.Structure = g.Snapshot()
	}
	return out, nil
}

func (s *syncService) Run(ctx context.Context, g *hierarchy.Graph, rows []hierarchy.Row, opts RunOptions) (*RunResult, error) {
	start := time.Now()

	loadRes, err := s.Load(ctx, g, rows, RunOptions{Simulation: opts.Simulation})
	if err != nil {
		observeSyncPhase("run", "failed", start)
		return nil, err
	}
	orderRes, err := s.Order(ctx, g, RunOptions{Simulation: opts.Simulation})
	if err != nil {
		observeSyncPhase("run", "failed", start)
		return nil, err
	}
	observeSyncPhase("run", "ok", start)

	out := &RunResult{
		FoundExisting:  loadRes.FoundExisting,
		CreatedNew:     loadRes.CreatedNew,
		ProcessedNodes: orderRes.ProcessedNodes,
		TotalNodes:     g.Len(),
		Simulation:     opts.Simulation,
	}
	if opts.PrintStructure {
		out.Structure = g.Snapshot()
	}
	return out, nil
}

func observeSyncPhase(phase, outcome string, start time.Time) {
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveSyncPhase(phase, outcome, time.Since(start))
	}
}

func recordResolutionOutcomes(res Resolution, simulation bool, total int) {
	metrics := observability.Current()
	if metrics == nil {
		return
	}
	metrics.AddNodeOutcomes("found", res.Found)
	metrics.AddNodeOutcomes("created", res.Created)
	if simulation {
		metrics.AddNodeOutcomes("simulated", total-res.Found-res.Created)
	}
}
