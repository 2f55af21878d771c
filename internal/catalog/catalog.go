package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// MinTakes is the number of valid takes a work needs before it can be used
// for a blind listening round.
const MinTakes = 3

// TakeRef points at one recorded performance. The video id may be empty for
// catalog entries that are still being filled in; empty ids are never surfaced.
type TakeRef struct {
	YT string `json:"yt"`
}

// Work is one aria/composition with its candidate takes.
type Work struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Composer string    `json:"composer"`
	Aliases  []string  `json:"aliases"`
	Takes    []TakeRef `json:"takes"`

	// lowercase title + composer + aliases, built at load time
	searchText string
}

// TakeIDs returns the non-empty video ids of the work, in catalog order.
func (w *Work) TakeIDs() []string {
	out := make([]string, 0, len(w.Takes))
	for _, t := range w.Takes {
		if t.YT != "" {
			out = append(out, t.YT)
		}
	}
	return out
}

// Eligible reports whether the work has at least min valid takes.
func (w *Work) Eligible(min int) bool {
	return len(w.TakeIDs()) >= min
}

// Label is the display form used by work pickers.
func (w *Work) Label() string {
	if w.Composer == "" {
		return w.Title
	}
	return w.Title + " — " + w.Composer
}

// Catalog holds the immutable set of works loaded at startup.
type Catalog struct {
	works []*Work
	byID  map[string]*Work
}

type catalogFile struct {
	Works []*Work `json:"works"`
}

// Load reads and indexes the works catalog. The file is read once; callers
// should treat any error as fatal.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	c := &Catalog{
		works: file.Works,
		byID:  make(map[string]*Work, len(file.Works)),
	}
	for _, w := range c.works {
		parts := append([]string{w.Title, w.Composer}, w.Aliases...)
		w.searchText = strings.ToLower(strings.Join(parts, " "))
		c.byID[w.ID] = w
	}
	return c, nil
}

// New builds a catalog from an in-memory slice. Used by tests.
func New(works []*Work) *Catalog {
	c := &Catalog{
		works: works,
		byID:  make(map[string]*Work, len(works)),
	}
	for _, w := range c.works {
		parts := append([]string{w.Title, w.Composer}, w.Aliases...)
		w.searchText = strings.ToLower(strings.Join(parts, " "))
		c.byID[w.ID] = w
	}
	return c
}

// ByID returns the work with the given id, or nil.
func (c *Catalog) ByID(id string) *Work {
	return c.byID[id]
}

// Eligible returns the works with at least min valid takes.
func (c *Catalog) Eligible(min int) []*Work {
	out := []*Work{}
	for _, w := range c.works {
		if w.Eligible(min) {
			out = append(out, w)
		}
	}
	return out
}

// Search returns eligible works whose title, composer or aliases contain the
// query as a case-insensitive substring. An empty or whitespace query returns
// no results rather than the whole catalog.
func (c *Catalog) Search(query string, min int) []*Work {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*Work{}
	}
	out := []*Work{}
	for _, w := range c.works {
		if !w.Eligible(min) {
			continue
		}
		if strings.Contains(w.searchText, q) {
			out = append(out, w)
		}
	}
	return out
}

// RandomEligible picks a random work among those with at least min valid
// takes. Returns nil if none qualify.
func (c *Catalog) RandomEligible(rng *rand.Rand, min int) *Work {
	eligible := c.Eligible(min)
	if len(eligible) == 0 {
		return nil
	}
	return eligible[rng.Intn(len(eligible))]
}

// Len returns the total number of works, eligible or not.
func (c *Catalog) Len() int {
	return len(c.works)
}
