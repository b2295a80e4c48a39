package checks

import (
	"fmt"
	"strings"
)

// DeepLinkKind identifies which portal page a link points at.
type DeepLinkKind string

const (
	LinkSubject DeepLinkKind = "subject" // 利用者詳細
	LinkWorker  DeepLinkKind = "worker"  // スタッフ詳細
	LinkShift   DeepLinkKind = "shift"   // シフト詳細
)

// DeepLink is a structured reference into the portal. Checks build these;
// only the LinkBuilder knows the hosting domain and URL layout, so the rule
// engine stays free of presentation concerns.
type DeepLink struct {
	Kind     DeepLinkKind
	EntityID string
}

// LinkBuilder resolves deep links against the configured portal base URL.
type LinkBuilder struct {
	BaseURL string
}

// NewLinkBuilder trims a trailing slash so path joining stays predictable.
func NewLinkBuilder(baseURL string) LinkBuilder {
	return LinkBuilder{BaseURL: strings.TrimRight(baseURL, "/")}
}

// URL resolves the link to an absolute portal URL.
func (b LinkBuilder) URL(link DeepLink) string {
	switch link.Kind {
	case LinkSubject:
		return fmt.Sprintf("%s/cs/%s", b.BaseURL, link.EntityID)
	case LinkWorker:
		return fmt.Sprintf("%s/staff/%s", b.BaseURL, link.EntityID)
	case LinkShift:
		return fmt.Sprintf("%s/shift/%s", b.BaseURL, link.EntityID)
	default:
		return b.BaseURL
	}
}

// Anchor renders the link as an HTML anchor. Downstream consumers of
// alert_log render embedded anchors verbatim.
func (b LinkBuilder) Anchor(link DeepLink, label string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, b.URL(link), label)
}
