// Package wishes loads and formats the participants' public and private
// preferences and builds the role instructions that frame a negotiation.
package wishes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section labels recognized in the text format.
const (
	sectionPublic  = "公開"
	sectionPrivate = "非公開"
)

// Split holds one person's wishes, divided by visibility. Public wishes
// may be stated openly in the negotiation; private wishes must be honored
// without being disclosed.
type Split struct {
	Public  []string `json:"public" yaml:"public"`
	Private []string `json:"private" yaml:"private"`
}

// Set maps a person's display name to their wishes.
type Set map[string]Split

// Names returns the set's person names, sorted for stable output.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseText parses the bracket-header text format:
//
//	[旅行者A 公開]
//	- 自然の多い場所に行きたい
//
//	[旅行者A 非公開]
//	- 片道4時間以内
//
// A header without a section defaults to public. Lines outside a `- `
// bullet or a header are ignored.
func ParseText(txt string) Set {
	set := Set{}
	var name, section string

	for _, raw := range strings.Split(txt, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			header := strings.TrimSpace(line[1 : len(line)-1])
			name, section = header, sectionPublic
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				name = header[:i]
				section = strings.TrimSpace(header[i+1:])
			}
			if _, ok := set[name]; !ok {
				set[name] = Split{}
			}
			continue
		}
		if strings.HasPrefix(line, "- ") && name != "" {
			sp := set[name]
			wish := line[2:]
			if section == sectionPrivate {
				sp.Private = append(sp.Private, wish)
			} else {
				sp.Public = append(sp.Public, wish)
			}
			set[name] = sp
		}
	}
	return set
}

// Load reads wishes from a file. The format is chosen by extension:
// `.json` accepts `{name: {public: [], private: []}}` with a bare list
// treated as public-only, `.yaml`/`.yml` accepts the same shape, and
// anything else is parsed as the text format. An empty path yields the
// built-in default set.
func Load(path string) (Set, error) {
	if path == "" {
		return ParseText(DefaultText), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wishes: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(raw)
	case ".yaml", ".yml":
		var set Set
		if err := yaml.Unmarshal(raw, &set); err != nil {
			return nil, fmt.Errorf("parse wishes yaml: %w", err)
		}
		return set, nil
	default:
		return ParseText(string(raw)), nil
	}
}

func parseJSON(raw []byte) (Set, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse wishes json: %w", err)
	}

	set := Set{}
	for name, entry := range doc {
		var sp Split
		if err := json.Unmarshal(entry, &sp); err == nil {
			set[name] = sp
			continue
		}
		var list []string
		if err := json.Unmarshal(entry, &list); err != nil {
			return nil, fmt.Errorf("parse wishes json: entry %q has an unsupported shape", name)
		}
		set[name] = Split{Public: list}
	}
	return set, nil
}

// FullBlock renders every person's public and private wishes as labeled
// bullet sections, for prompts with full visibility.
func FullBlock(set Set) string {
	parts := make([]string, 0, len(set))
	for _, name := range set.Names() {
		sp := set[name]
		parts = append(parts, fmt.Sprintf("[%s %s]\n%s\n\n[%s %s]\n%s",
			name, sectionPublic, bullets(sp.Public),
			name, sectionPrivate, bullets(sp.Private)))
	}
	return strings.Join(parts, "\n\n")
}

// PublicBlock renders public wishes only.
func PublicBlock(set Set) string {
	parts := make([]string, 0, len(set))
	for _, name := range set.Names() {
		parts = append(parts, fmt.Sprintf("[%s %s]\n%s",
			name, sectionPublic, bullets(set[name].Public)))
	}
	return strings.Join(parts, "\n\n")
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "- （なし）"
	}
	return "- " + strings.Join(items, "\n- ")
}
