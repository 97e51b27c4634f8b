package analytics

import (
	"strings"

	"github.com/fleetcmd/fleet-command/internal/models"
)

// Descendants computes the transitive closure of organization IDs reachable
// from the seeds, seeds included. The closure is an explicit worklist with
// a visited set: an ID is marked before it is expanded and never expanded
// twice, so the walk terminates even if upstream data sneaks a cycle into
// the parent-child graph.
func Descendants(seeds []string, childrenOf func(string) []string) map[string]bool {
	visited := make(map[string]bool, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range childrenOf(id) {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}
	return visited
}

// OrgIndex is an in-memory view of the organization forest built from a
// storage snapshot, keyed by ObjectID hex strings.
type OrgIndex struct {
	byID     map[string]models.Organization
	children map[string][]string
}

// NewOrgIndex indexes a snapshot of organizations.
func NewOrgIndex(orgs []models.Organization) *OrgIndex {
	idx := &OrgIndex{
		byID:     make(map[string]models.Organization, len(orgs)),
		children: make(map[string][]string),
	}
	for _, org := range orgs {
		idx.byID[org.ID.Hex()] = org
		if org.ParentID != nil {
			parent := org.ParentID.Hex()
			idx.children[parent] = append(idx.children[parent], org.ID.Hex())
		}
	}
	return idx
}

// Name returns the organization name for an ID, empty when unknown.
func (x *OrgIndex) Name(id string) string {
	return x.byID[id].Name
}

// Children returns the direct child IDs of an organization.
func (x *OrgIndex) Children(id string) []string {
	return x.children[id]
}

// MatchIDs returns the IDs of organizations of the given type whose name
// contains the query, case-insensitively.
func (x *OrgIndex) MatchIDs(t models.OrgType, query string) []string {
	var ids []string
	q := strings.ToLower(query)
	for id, org := range x.byID {
		if org.Type == t && strings.Contains(strings.ToLower(org.Name), q) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Descendants resolves the closure of the given seeds over this index.
func (x *OrgIndex) Descendants(seeds []string) map[string]bool {
	return Descendants(seeds, x.Children)
}
