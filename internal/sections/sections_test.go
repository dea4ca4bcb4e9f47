package sections

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/outboundcheck/internal/clashapi"
	"github.com/hamed0406/outboundcheck/internal/domain"
)

func TestProxyURLName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"direct://", "Direct"},
		{"vless://uuid@host:443?security=reality#Germany%201", "Germany 1"},
		{"ss://abc@host:8388", ""},
		{"ss://abc@host:8388#", ""},
		{"trojan://p@h:443#bad%zz", ""},
		{"anytls://p@h:443#one#two", "one"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ProxyURLName(c.in), c.in)
	}
}

const sectionsYAML = `
sections:
  - code: main
    display_name: Main
    with_tag_select: true
    outbounds:
      - code: main-urltest
        type: URLTest
        display_name: Fastest
        selected: true
      - code: de-1
        type: vless
        url: "vless://id@de.example:443#Germany%201"
  - code: direct-section
`

func TestParse(t *testing.T) {
	got, err := Parse([]byte(sectionsYAML))
	require.NoError(t, err)
	require.Len(t, got, 2)

	main := got[0]
	assert.Equal(t, "Main", main.DisplayName)
	assert.True(t, main.WithTagSelect)
	require.Len(t, main.Outbounds, 2)
	assert.Equal(t, domain.OutboundURLTest, main.Outbounds[0].Type)
	assert.True(t, main.Outbounds[0].Selected)
	assert.Equal(t, domain.OutboundProxy, main.Outbounds[1].Type)
	assert.Equal(t, "Germany 1", main.Outbounds[1].DisplayName)

	assert.Equal(t, "direct-section", got[1].DisplayName)
	assert.False(t, got[1].WithTagSelect)
}

func TestParse_MissingCode(t *testing.T) {
	_, err := Parse([]byte("sections:\n  - display_name: x\n"))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sectionsYAML), 0o600))

	got, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).Fetch(context.Background())
	assert.Error(t, err)
}

type fakeLister struct {
	proxies map[string]clashapi.Proxy
	err     error
}

func (f fakeLister) Proxies(ctx context.Context) (map[string]clashapi.Proxy, error) {
	return f.proxies, f.err
}

var controllerProxies = map[string]clashapi.Proxy{
	"GLOBAL":     {Name: "GLOBAL", Type: "Selector", Now: "main", All: []string{"main", "direct"}},
	"main":       {Name: "main", Type: "Selector", Now: "auto", All: []string{"auto", "de", "direct"}},
	"yt":         {Name: "yt", Type: "Selector", Now: "fo", All: []string{"fo", "de"}},
	"auto":       {Name: "auto", Type: "URLTest", Now: "de", All: []string{"de"}},
	"fo":         {Name: "fo", Type: "Fallback", Now: "de", All: []string{"de"}},
	"de":         {Name: "de", Type: "Shadowsocks"},
	"direct":     {Name: "direct", Type: "Direct"},
	"standalone": {Name: "standalone", Type: "VLESS"},
}

func TestClashSource_AllSelectors(t *testing.T) {
	got, err := NewClashSource(fakeLister{proxies: controllerProxies}, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "main", got[0].Code)
	assert.True(t, got[0].WithTagSelect)
	require.Len(t, got[0].Outbounds, 3)
	assert.Equal(t, domain.OutboundURLTest, got[0].Outbounds[0].Type)
	assert.True(t, got[0].Outbounds[0].Selected)
	assert.Equal(t, domain.OutboundProxy, got[0].Outbounds[1].Type)
	assert.Equal(t, domain.OutboundDirect, got[0].Outbounds[2].Type)

	sel, ok := got[1].SelectedOutbound()
	require.True(t, ok)
	assert.Equal(t, domain.OutboundFailover, sel.Type)
}

func TestClashSource_NamedGroups(t *testing.T) {
	got, err := NewClashSource(fakeLister{proxies: controllerProxies}, []string{"standalone", "yt"}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].WithTagSelect)
	assert.Equal(t, "standalone", got[0].Code)
	assert.Equal(t, "yt", got[1].Code)
}

func TestClashSource_Errors(t *testing.T) {
	_, err := NewClashSource(fakeLister{proxies: controllerProxies}, []string{"nope"}).Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrUnknownSection), "got %v", err)

	boom := errors.New("connection refused")
	_, err = NewClashSource(fakeLister{err: boom}, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
}
