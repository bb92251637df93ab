package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

// Direction is the traversal policy for ordering enforcement. The remote's
// reordering semantics are order-sensitive, so the walk is deterministic
// and the policy an explicit, named choice.
type Direction string

const (
	// DirectionLeafFirst walks the deepest level first and reverses
	// encounter order within each level. This is the default.
	DirectionLeafFirst Direction = "leaf_first"
	// DirectionRootFirst walks the root level first in encounter order.
	DirectionRootFirst Direction = "root_first"
)

// ParseDirection maps a config value onto a Direction; blank selects the
// leaf-first default.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(DirectionLeafFirst):
		return DirectionLeafFirst, nil
	case string(DirectionRootFirst):
		return DirectionRootFirst, nil
	default:
		return "", fmt.Errorf("unknown traversal direction %q", raw)
	}
}

// OrderEnforcer rewrites every resolved node's remote parent and sibling
// slot so the remote ordering matches the source's encounter order.
type OrderEnforcer interface {
	Enforce(ctx context.Context, g *hierarchy.Graph, simulation bool) (int, error)
}

type orderEnforcer struct {
	log       *logger.Logger
	remote    RemoteOrgService
	direction Direction
}

func NewOrderEnforcer(log *logger.Logger, remote RemoteOrgService, direction Direction) OrderEnforcer {
	if direction == "" {
		direction = DirectionLeafFirst
	}
	return &orderEnforcer{
		log:       log.With("service", "OrderEnforcer"),
		remote:    remote,
		direction: direction,
	}
}

// Enforce patches parent, name, and next-sibling slot for every node that
// holds a real identifier, and returns how many it processed. Unresolved
// nodes are skipped without error. Placeholder identifiers minted by a
// simulated resolution have no remote record and are never written. In
// simulation every identified node is counted but no call leaves the
// process. A failed patch aborts the pass and discards the count.
func (o *orderEnforcer) Enforce(ctx context.Context, g *hierarchy.Graph, simulation bool) (int, error) {
	nodes := g.NodesInLevelOrder()
	if o.direction == DirectionLeafFirst {
		slices.Reverse(nodes)
	}

	processed := 0
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if node.ID == nil {
			continue
		}
		if simulation {
			processed++
			continue
		}
		if hierarchy.IsSyntheticID(*node.ID) {
			continue
		}

		patch := OrgPatch{
			ParentID:      node.WireParentID(),
			Name:          node.Name,
			NextSiblingID: node.WireNextSiblingID(),
			Code:          node.OrganizationCode,
		}
		if err := o.remote.PatchOrganization(ctx, *node.ID, patch); err != nil {
			o.log.Warn("Organization patch failed",
				"level", string(node.Level),
				"code", node.Code,
				"organization_id", *node.ID,
				"error", err,
			)
			return 0, fmt.Errorf("enforce ordering %s %q: %w", node.Level, node.Code, err)
		}
		processed++
		o.log.Debug("Organization ordering patched",
			"level", string(node.Level),
			"code", node.Code,
			"organization_id", *node.ID,
			"parent_id", patch.ParentID,
			"next_sibling_id", patch.NextSiblingID,
		)
	}
	return processed, nil
}
