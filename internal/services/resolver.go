package services

import (
	"context"
	"fmt"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

// Resolution reports how identities were assigned during one pass.
type Resolution struct {
	Found   int
	Created int
}

// IdentityResolver gives every node in a graph a remote identifier: adopt
// the record matching the node's name, create one when absent, or mint a
// placeholder in simulation.
type IdentityResolver interface {
	Resolve(ctx context.Context, g *hierarchy.Graph, simulation bool) (Resolution, error)
}

type identityResolver struct {
	log    *logger.Logger
	remote RemoteOrgService
}

func NewIdentityResolver(log *logger.Logger, remote RemoteOrgService) IdentityResolver {
	return &identityResolver{
		log:    log.With("service", "IdentityResolver"),
		remote: remote,
	}
}

// Resolve walks level by level, root level first, so a node's parent holds
// its identifier before the node itself is visited. Simulation still
// performs the read-only lookup; only the create is replaced by a
// placeholder. Counts from a failed pass are discarded, the caller never
// sees partial totals.
func (r *identityResolver) Resolve(ctx context.Context, g *hierarchy.Graph, simulation bool) (Resolution, error) {
	var res Resolution
	synth := hierarchy.NewSyntheticIDs()

	for _, node := range g.NodesInLevelOrder() {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		node.RefreshParentID()

		id, found, err := r.remote.LookupIDByDescription(ctx, node.Name)
		if err != nil {
			r.log.Warn("Organization lookup failed",
				"level", string(node.Level),
				"code", node.Code,
				"error", err,
			)
			return Resolution{}, fmt.Errorf("resolve %s %q: %w", node.Level, node.Code, err)
		}
		if found {
			node.SetID(id)
			res.Found++
			r.log.Debug("Adopted existing organization",
				"level", string(node.Level),
				"code", node.Code,
				"organization_id", id,
			)
			continue
		}

		if simulation {
			node.SetID(synth.Next())
			r.log.Debug("Synthesized placeholder identifier",
				"level", string(node.Level),
				"code", node.Code,
				"organization_id", *node.ID,
			)
			continue
		}

		createdID, err := r.remote.CreateOrganization(ctx, node.WireParentID(), node.Name, node.Name)
		if err != nil {
			r.log.Warn("Organization create failed",
				"level", string(node.Level),
				"code", node.Code,
				"error", err,
			)
			return Resolution{}, fmt.Errorf("resolve %s %q: %w", node.Level, node.Code, err)
		}
		node.SetID(createdID)
		res.Created++
		r.log.Debug("Created organization",
			"level", string(node.Level),
			"code", node.Code,
			"organization_id", createdID,
		)
	}

	// Sibling identifier snapshots are recomputed once after the walk; a
	// node's next sibling may sit later in level order and only now has an
	// identifier to contribute.
	g.ComputeSiblingLinks()
	return res, nil
}
