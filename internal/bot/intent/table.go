// Package intent holds the static intent table: the curated mapping from
// intent categories to representative keywords and canned reply templates.
//
// The table is loaded once at process start from YAML configuration (with an
// embedded default) and is read-only thereafter. Both the keyword resolver
// and the semantic fallback resolver scan it; neither mutates it.
package intent

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed intents.yaml
var defaultIntentsYAML []byte

// Record is one entry of the intent table. Immutable after load.
type Record struct {
	// ID is the unique, stable intent identifier, e.g. "home_buying_process_steps".
	ID string `yaml:"id"`

	// Keywords are the representative phrases matched against user input,
	// in declaration order.
	Keywords []string `yaml:"keywords"`

	// Reply is the canned reply template. It may reference market-data
	// fields using Go template syntax, e.g. {{.FLAvgHomePrice}}; rendering
	// happens at response time (see RenderReply), never at load time.
	Reply string `yaml:"reply"`
}

// Sensitive reports whether the record belongs to a legal or compliance
// category. Sensitive intents use a stricter keyword-match threshold (0.75
// instead of 0.50) so a sloppy match can never surface regulated content.
func (r Record) Sensitive() bool {
	return strings.Contains(r.ID, "legal") || strings.Contains(r.ID, "compliance")
}

// DisplayName returns the intent ID with underscores replaced by spaces,
// used for the "did you mean …?" annotation.
func (r Record) DisplayName() string {
	return strings.ReplaceAll(r.ID, "_", " ")
}

// Table is the ordered collection of intent records. Scan order matters:
// keyword resolution breaks ties by first-seen record.
type Table []Record

// tableDocument is the YAML wire shape of an intent table file.
type tableDocument struct {
	Intents []Record `yaml:"intents"`
}

// Parse decodes an intent table YAML document and validates it. It is the
// canonical entry point for loading intent configuration.
func Parse(data []byte) (Table, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("intent parse: %w", err)
	}
	if err := validate(doc.Intents); err != nil {
		return nil, err
	}
	return Table(doc.Intents), nil
}

// Default returns the embedded intent table. The embedded document is
// validated at startup like any other; a corrupt embed is a programming
// error and panics.
func Default() Table {
	table, err := Parse(defaultIntentsYAML)
	if err != nil {
		panic(fmt.Sprintf("intent: embedded table invalid: %v", err))
	}
	return table
}

// validate checks semantic constraints the JSON Schema cannot express
// (duplicate detection across records).
func validate(records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("intent validate: table must contain at least one intent")
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("intent validate: intents[%d]: id must not be empty", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("intent validate: intents[%d]: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}

		if len(r.Keywords) == 0 {
			return fmt.Errorf("intent validate: intents[%d] (%q): at least one keyword required", i, r.ID)
		}
		for j, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("intent validate: intents[%d] (%q): keywords[%d] must not be empty", i, r.ID, j)
			}
		}
		if strings.TrimSpace(r.Reply) == "" {
			return fmt.Errorf("intent validate: intents[%d] (%q): reply must not be empty", i, r.ID)
		}
	}
	return nil
}

// Find returns the record with the given ID, or false when absent.
func (t Table) Find(id string) (Record, bool) {
	for _, r := range t {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Keywords returns every keyword in the table in scan order. Used to warm
// the embedding cache.
func (t Table) Keywords() []string {
	var out []string
	for _, r := range t {
		out = append(out, r.Keywords...)
	}
	return out
}

// PriorityKeywords returns the keywords of the records whose IDs appear in
// ids, preserving table order. Unknown IDs are ignored.
func (t Table) PriorityKeywords(ids []string) []string {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var out []string
	for _, r := range t {
		if _, ok := want[r.ID]; ok {
			out = append(out, r.Keywords...)
		}
	}
	return out
}
