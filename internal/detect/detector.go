// Package detect implements the automatic pattern scan that seeds a new
// audit's check rows from a contract source snapshot.
package detect

import (
	"fmt"
	"regexp"

	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
)

// Outcome is the result of scanning one checklist item against source text.
type Outcome struct {
	// Evidence is the source substring matched by the first matching
	// pattern. Empty when Matched is false.
	Evidence string
	Matched  bool
}

// Detector holds the precompiled patterns for every automatic and
// semi-automatic checklist item. Construction happens once at startup;
// scanning is pure and safe for concurrent use.
type Detector struct {
	compiled map[string][]*regexp.Regexp
	items    []model.ChecklistItem
}

// New compiles the pattern-based items of the catalog. The catalog validates
// patterns at load time, so a compile failure here means the two fell out of
// sync and is treated as a catalog integrity error.
func New(cat *catalog.Catalog) (*Detector, error) {
	d := &Detector{
		compiled: make(map[string][]*regexp.Regexp),
	}

	for _, item := range cat.Items() {
		if !item.Detection.PatternBased() {
			continue
		}
		res := make([]*regexp.Regexp, 0, len(item.Detection.Patterns))
		for _, p := range item.Detection.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("%w: item %q pattern %q: %v", common.ErrCatalogIntegrity, item.ID, p, err)
			}
			res = append(res, re)
		}
		d.compiled[item.ID] = res
		d.items = append(d.items, item)
	}

	return d, nil
}

// Detect scans the source text against every pattern-based item and returns
// an outcome per item id. Patterns are tried in catalog order and the first
// match wins; the remaining patterns are not evaluated. Manual items never
// appear in the result.
func (d *Detector) Detect(source string) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(d.items))

	for _, item := range d.items {
		outcome := Outcome{}
		for _, re := range d.compiled[item.ID] {
			if loc := re.FindStringIndex(source); loc != nil {
				outcome = Outcome{
					Matched:  true,
					Evidence: source[loc[0]:loc[1]],
				}
				break
			}
		}
		outcomes[item.ID] = outcome
	}

	return outcomes
}

// ItemCount returns the number of pattern-based items the detector evaluates.
func (d *Detector) ItemCount() int {
	return len(d.items)
}
