// Package sections provides the dashboard section list the outbound
// diagnostic runs against.
package sections

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

var ErrUnknownSection = errors.New("sections: unknown section")

// Source returns the current sections. An error means the list could not
// be obtained at all.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Section, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]domain.Section, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]domain.Section, error) { return f(ctx) }

// ProxyURLName extracts a display name from a proxy link: the decoded
// #fragment, "Direct" for direct://, empty when there is none.
func ProxyURLName(link string) string {
	if link == "direct://" {
		return "Direct"
	}
	parts := strings.Split(link, "#")
	if len(parts) < 2 || parts[1] == "" {
		return ""
	}
	name, err := url.PathUnescape(parts[1])
	if err != nil {
		return ""
	}
	return name
}
