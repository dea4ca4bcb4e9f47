package sections

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

type fileConfig struct {
	Sections []fileSection `yaml:"sections"`
}

type fileSection struct {
	Code          string         `yaml:"code"`
	DisplayName   string         `yaml:"display_name"`
	WithTagSelect bool           `yaml:"with_tag_select"`
	Outbounds     []fileOutbound `yaml:"outbounds"`
}

type fileOutbound struct {
	Code        string `yaml:"code"`
	Type        string `yaml:"type"`
	DisplayName string `yaml:"display_name"`
	URL         string `yaml:"url"`
	Selected    bool   `yaml:"selected"`
}

// FileSource reads sections from a YAML file on every Fetch, so edits are
// picked up by the next run.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Fetch(ctx context.Context) ([]domain.Section, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a sections YAML document.
func Parse(b []byte) ([]domain.Section, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse sections: %w", err)
	}

	out := make([]domain.Section, 0, len(cfg.Sections))
	for i, s := range cfg.Sections {
		if s.Code == "" {
			return nil, fmt.Errorf("parse sections: section %d has no code", i)
		}
		sec := domain.Section{
			Code:          s.Code,
			DisplayName:   s.DisplayName,
			WithTagSelect: s.WithTagSelect,
			Outbounds:     make([]domain.Outbound, 0, len(s.Outbounds)),
		}
		if sec.DisplayName == "" {
			sec.DisplayName = s.Code
		}
		for _, o := range s.Outbounds {
			name := o.DisplayName
			if name == "" && o.URL != "" {
				name = ProxyURLName(o.URL)
			}
			sec.Outbounds = append(sec.Outbounds, domain.Outbound{
				Code:        o.Code,
				Type:        domain.ParseOutboundType(o.Type),
				DisplayName: name,
				Selected:    o.Selected,
			})
		}
		out = append(out, sec)
	}
	return out, nil
}
