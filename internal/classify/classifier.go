// Package classify assigns industry, layer, node and urgency to a job
// posting by keyword matching against a taxonomy.Rules table.
package classify

import (
	"slices"
	"strings"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/taxonomy"
)

type nodeMatcher struct {
	keyword string // lowercased
	nodeID  string
}

type compiledLayer struct {
	id       string
	keywords []string
	nodes    []nodeMatcher
	fallback string
}

type compiledIndustry struct {
	id       taxonomy.Industry
	keywords []string
	layers   []compiledLayer
}

// Result is the full classification of one posting.
type Result struct {
	Industry taxonomy.Industry
	Layer    string
	NodeID   string
	Urgency  taxonomy.Urgency
}

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	industries []compiledIndustry
	urgency    taxonomy.UrgencyThresholds
}

func New(rules *taxonomy.Rules) *Classifier {
	c := &Classifier{urgency: rules.Urgency}
	for _, ind := range rules.Industries {
		ci := compiledIndustry{id: ind.ID, keywords: lowerAll(ind.Keywords)}
		for _, l := range ind.Layers {
			cl := compiledLayer{id: l.ID, keywords: lowerAll(l.Keywords)}
			for _, n := range l.Nodes {
				if cl.fallback == "" {
					cl.fallback = n.ID
				}
				for _, kw := range n.Keywords {
					kw = strings.ToLower(strings.TrimSpace(kw))
					if kw == "" {
						continue
					}
					cl.nodes = append(cl.nodes, nodeMatcher{keyword: kw, nodeID: n.ID})
				}
			}
			ci.layers = append(ci.layers, cl)
		}
		c.industries = append(c.industries, ci)
	}
	slices.SortStableFunc(c.industries, func(a, b compiledIndustry) int {
		return a.id.Rank() - b.id.Rank()
	})
	return c
}

// Classify runs all four classifiers over one input.
func (c *Classifier) Classify(in models.JobInput) Result {
	ind := c.Industry(in)
	layer := c.Layer(in, ind)
	return Result{
		Industry: ind,
		Layer:    layer,
		NodeID:   c.Node(in.Title, ind, layer),
		Urgency:  c.Urgency(in),
	}
}

// Industry scores each industry by the number of its distinct keywords
// found in title, company, requirements and responsibilities. Ties go to
// the industry earlier in taxonomy.Industries(); no match at all yields
// pharma.
func (c *Classifier) Industry(in models.JobInput) taxonomy.Industry {
	text := searchText(in.Title, in.Company, in.Requirements, in.Responsibilities)

	best, bestScore := taxonomy.Pharma, 0
	for _, ind := range c.industries {
		if s := countHits(text, ind.keywords); s > bestScore {
			best, bestScore = ind.id, s
		}
	}
	return best
}

// Layer works like Industry over the layers of one industry. Company names
// are left out of the text.
func (c *Classifier) Layer(in models.JobInput, industry taxonomy.Industry) string {
	ind := c.industry(industry)
	if ind == nil {
		ind = c.first()
	}
	if ind == nil || len(ind.layers) == 0 {
		return ""
	}
	text := searchText(in.Title, "", in.Requirements, in.Responsibilities)

	best, bestScore := ind.layers[0].id, 0
	for _, l := range ind.layers {
		if s := countHits(text, l.keywords); s > bestScore {
			best, bestScore = l.id, s
		}
	}
	return best
}

// Node returns the node of the first keyword found in the title, in table
// order. Without a hit it returns the first node of the layer; for an
// industry/layer pair the table does not know, it synthesizes an id from
// the title so the result is never empty.
func (c *Classifier) Node(title string, industry taxonomy.Industry, layer string) string {
	l := c.layer(industry, layer)
	if l == nil {
		return fallbackNodeID(title, layer)
	}
	t := strings.ToLower(title)
	for _, m := range l.nodes {
		if strings.Contains(t, m.keyword) {
			return m.nodeID
		}
	}
	if l.fallback != "" {
		return l.fallback
	}
	return fallbackNodeID(title, layer)
}

// Urgency honours an explicit level set by Normalize and otherwise infers
// from the salary text.
func (c *Classifier) Urgency(in models.JobInput) taxonomy.Urgency {
	if in.Urgency.Valid() {
		return in.Urgency
	}
	return InferUrgency(in.Salary, c.urgency)
}

func (c *Classifier) industry(id taxonomy.Industry) *compiledIndustry {
	for i := range c.industries {
		if c.industries[i].id == id {
			return &c.industries[i]
		}
	}
	return nil
}

func (c *Classifier) first() *compiledIndustry {
	if len(c.industries) == 0 {
		return nil
	}
	return &c.industries[0]
}

func (c *Classifier) layer(industry taxonomy.Industry, layer string) *compiledLayer {
	ind := c.industry(industry)
	if ind == nil {
		return nil
	}
	for i := range ind.layers {
		if ind.layers[i].id == layer {
			return &ind.layers[i]
		}
	}
	return nil
}

func searchText(title, company string, lists ...[]string) string {
	var b strings.Builder
	b.WriteString(title)
	if company != "" {
		b.WriteByte(' ')
		b.WriteString(company)
	}
	for _, items := range lists {
		for _, it := range items {
			b.WriteByte(' ')
			b.WriteString(it)
		}
	}
	return strings.ToLower(b.String())
}

// countHits counts distinct keywords, so a keyword repeated in the text
// scores once.
func countHits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func lowerAll(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
