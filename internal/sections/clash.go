package sections

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hamed0406/outboundcheck/internal/clashapi"
	"github.com/hamed0406/outboundcheck/internal/domain"
)

// ProxyLister is the part of the controller API the Clash source needs.
type ProxyLister interface {
	Proxies(ctx context.Context) (map[string]clashapi.Proxy, error)
}

// ClashSource derives sections from the controller's proxy list. Groups
// names the sections to expose; empty means every Selector except GLOBAL.
type ClashSource struct {
	API    ProxyLister
	Groups []string
}

func NewClashSource(api ProxyLister, groups []string) *ClashSource {
	return &ClashSource{API: api, Groups: groups}
}

func (c *ClashSource) Fetch(ctx context.Context) ([]domain.Section, error) {
	proxies, err := c.API.Proxies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}

	names := c.Groups
	if len(names) == 0 {
		for name, p := range proxies {
			if isSelector(p) && name != "GLOBAL" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}

	out := make([]domain.Section, 0, len(names))
	for _, name := range names {
		p, ok := proxies[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
		out = append(out, toSection(name, p, proxies))
	}
	return out, nil
}

func toSection(name string, p clashapi.Proxy, all map[string]clashapi.Proxy) domain.Section {
	if !isSelector(p) {
		return domain.Section{
			Code:        name,
			DisplayName: name,
			Outbounds: []domain.Outbound{{
				Code:        name,
				Type:        domain.ParseOutboundType(p.Type),
				DisplayName: name,
				Selected:    true,
			}},
		}
	}

	sec := domain.Section{
		Code:          name,
		DisplayName:   name,
		WithTagSelect: true,
		Outbounds:     make([]domain.Outbound, 0, len(p.All)),
	}
	for _, member := range p.All {
		sec.Outbounds = append(sec.Outbounds, domain.Outbound{
			Code:        member,
			Type:        domain.ParseOutboundType(all[member].Type),
			DisplayName: member,
			Selected:    member == p.Now,
		})
	}
	return sec
}

func isSelector(p clashapi.Proxy) bool {
	return strings.EqualFold(p.Type, "Selector")
}
