package checks

import (
	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// DetermineServicesFromCertificates maps a worker's held certificate
// documents to the set of service keys the worker is qualified for.
// Pure function: total over every input, including empty slices.
//
// Labels that do not resolve in the active taxonomy, or resolve to a row
// without a service group, contribute nothing; that is silence, not an error.
// An empty document list yields an empty set: "qualified for nothing",
// never "unknown".
func DetermineServicesFromCertificates(docs []models.CertificateDocument, taxonomy []models.CertificateMaster) []string {
	// label → service group, active certificate rows only.
	// Last write wins on duplicate labels; the master is label-unique in
	// practice.
	lookup := make(map[string]string, len(taxonomy))
	for _, row := range taxonomy {
		if row.Category != models.TaxonomyCategoryCertificate {
			continue
		}
		if !row.IsActive {
			continue
		}
		if row.ServiceGroup == nil || *row.ServiceGroup == "" {
			continue
		}
		lookup[row.Label] = *row.ServiceGroup
	}

	seen := map[string]bool{}
	var keys []string
	for _, doc := range docs {
		group, ok := lookup[doc.Label]
		if !ok {
			continue
		}
		if !seen[group] {
			seen[group] = true
			keys = append(keys, group)
		}
	}

	return keys
}
