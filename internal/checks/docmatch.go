package checks

// Required document types per service key. Every serviced subject needs the
// base contract pair; 行動援護 additionally needs a support plan on file.
const (
	DocTypeContract    = "契約書"
	DocTypeDisclosure  = "重要事項説明書"
	DocTypeSupportPlan = "支援計画書"
)

var baseRequiredDocs = []string{DocTypeContract, DocTypeDisclosure}

var extraRequiredDocsByKey = map[string][]string{
	ServiceKeyKodoengo: {DocTypeSupportPlan},
}

// RequiredDocTypes returns the document types a subject must have given the
// service keys of their shifts. Deterministic order for stable messages.
func RequiredDocTypes(serviceKeys []string) []string {
	required := append([]string{}, baseRequiredDocs...)
	seen := map[string]bool{}
	for _, doc := range required {
		seen[doc] = true
	}
	for _, key := range serviceKeys {
		for _, doc := range extraRequiredDocsByKey[key] {
			if !seen[doc] {
				seen[doc] = true
				required = append(required, doc)
			}
		}
	}
	return required
}

// MissingDocTypes returns the required types absent from held.
func MissingDocTypes(required []string, held map[string]bool) []string {
	var missing []string
	for _, doc := range required {
		if !held[doc] {
			missing = append(missing, doc)
		}
	}
	return missing
}
