// Package places defines the point-of-interest search collaborator interface
// and the candidate entity merged into task info during enrichment.
package places

import "context"

// Candidate is one venue/activity search result. After enrichment the best
// candidate's fields are merged into the owning task's external info.
type Candidate struct {
	Name       string  `json:"name" bson:"name"`
	Address    string  `json:"address,omitempty" bson:"address,omitempty"`
	Category   string  `json:"category,omitempty" bson:"category,omitempty"`
	Link       string  `json:"link,omitempty" bson:"link,omitempty"`
	Confidence float64 `json:"source_confidence" bson:"source_confidence"`
}

// Provider supplies venue candidates for a location and query.
//
// Implementations: SerpAPI (production), test stubs.
type Provider interface {
	// Search returns candidates ordered by descending confidence.
	// Failures are reported as *provider.Error.
	Search(ctx context.Context, location, query string) ([]Candidate, error)
}
