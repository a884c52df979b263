package bridge

import "context"

// NodeRef carries the identifiers a caller may attach to a node. Any subset
// may be set.
type NodeRef struct {
	ID         string
	DraftID    string
	ExternalID string
}

// Empty reports whether no identifier is set at all.
func (r NodeRef) Empty() bool {
	return r.ID == "" && r.DraftID == "" && r.ExternalID == ""
}

// resolveRef finds an existing record for ref by trying, in this fixed
// order: local id, draft id, external id. Every reconciler path resolves
// identity through this one function; returns (nil, nil) when nothing
// matches.
func resolveRef[T any](
	ctx context.Context,
	ref NodeRef,
	byID func(context.Context, string) (*T, error),
	byExternalID func(context.Context, string) (*T, error),
) (*T, error) {
	for _, id := range [...]string{ref.ID, ref.DraftID} {
		if id == "" {
			continue
		}
		rec, err := byID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	if ref.ExternalID == "" {
		return nil, nil
	}
	return byExternalID(ctx, ref.ExternalID)
}

// firstNonEmpty returns the first non-empty string, used to pick the draft
// anchor id for nodes that carry several identifiers.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
