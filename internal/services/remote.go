// Package services holds the synchronization core: identity resolution,
// ordering enforcement, run orchestration, and session bookkeeping.
package services

import (
	"context"
	"strings"

	"github.com/yungbote/orgsync-backend/internal/platform/sciforma"
)

// OrgPatch is the ordering state written back per node: where it hangs and
// which sibling follows it. Code is left off the wire when blank.
type OrgPatch struct {
	ParentID      int64
	Name          string
	NextSiblingID int64
	Code          string
}

// RemoteOrgService is the slice of the remote organization API the
// synchronization passes depend on.
type RemoteOrgService interface {
	// LookupIDByDescription returns the identifier of the first record
	// matching description, and whether one exists.
	LookupIDByDescription(ctx context.Context, description string) (int64, bool, error)
	CreateOrganization(ctx context.Context, parentID int64, name, description string) (int64, error)
	PatchOrganization(ctx context.Context, id int64, patch OrgPatch) error
}

// sciformaRemote adapts the Sciforma client to the service contract. It is
// pure translation; retries, auth, and throttling live in the client.
type sciformaRemote struct {
	client sciforma.Client
}

func NewRemoteOrgService(client sciforma.Client) RemoteOrgService {
	return &sciformaRemote{client: client}
}

func (r *sciformaRemote) LookupIDByDescription(ctx context.Context, description string) (int64, bool, error) {
	org, err := r.client.LookupOrganizationByDescription(ctx, description)
	if err != nil {
		return 0, false, err
	}
	if org == nil {
		return 0, false, nil
	}
	return org.ID, true, nil
}

func (r *sciformaRemote) CreateOrganization(ctx context.Context, parentID int64, name, description string) (int64, error) {
	org, err := r.client.CreateOrganization(ctx, sciforma.CreateOrganizationRequest{
		ParentID:    parentID,
		Name:        name,
		Description: description,
	})
	if err != nil {
		return 0, err
	}
	return org.ID, nil
}

func (r *sciformaRemote) PatchOrganization(ctx context.Context, id int64, patch OrgPatch) error {
	req := sciforma.PatchOrganizationRequest{
		ParentID:      &patch.ParentID,
		Name:          &patch.Name,
		NextSiblingID: &patch.NextSiblingID,
	}
	if code := strings.TrimSpace(patch.Code); code != "" {
		req.Code = &code
	}
	return r.client.PatchOrganization(ctx, id, req)
}
