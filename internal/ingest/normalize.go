// Package ingest turns decoded spreadsheet rows into classified job
// positions.
package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/sheet"
	"github.com/chemtalent/jobchain/internal/taxonomy"
)

// Header aliases, tried in order. The first alias with a non-blank value wins.
var (
	titleAliases            = []string{"职位名称", "title", "岗位名称"}
	companyAliases          = []string{"公司", "company", "公司名称"}
	locationAliases         = []string{"地点", "location", "工作地点"}
	salaryAliases           = []string{"薪资", "salary", "薪酬", "薪资范围"}
	experienceAliases       = []string{"经验要求", "experience", "工作经验"}
	educationAliases        = []string{"学历要求", "education", "学历"}
	companySizeAliases      = []string{"公司规模", "companySize", "企业规模"}
	industryTypeAliases     = []string{"行业类型", "industryType", "所属行业"}
	requirementsAliases     = []string{"岗位要求", "requirements", "职位要求"}
	responsibilitiesAliases = []string{"工作职责", "responsibilities", "岗位职责"}
	urgencyAliases          = []string{"紧急程度", "urgency"}
	linkAliases             = []string{"链接", "link", "职位链接", "岗位详情链接"}
)

// ErrMissingIdentity is the rejection reason for rows with no title,
// company or location.
const ErrMissingIdentity = "title, company and location are all empty"

// Normalize maps a raw row onto a JobInput. It returns false when the row
// has neither title, company nor location.
func Normalize(row sheet.Row) (*models.JobInput, bool) {
	v := newLookup(row.Values)

	in := &models.JobInput{
		Title:            v.text(titleAliases),
		Company:          v.text(companyAliases),
		Location:         v.text(locationAliases),
		Salary:           v.text(salaryAliases),
		Experience:       v.text(experienceAliases),
		Education:        v.text(educationAliases),
		CompanySize:      v.text(companySizeAliases),
		IndustryType:     v.text(industryTypeAliases),
		Requirements:     v.items(requirementsAliases),
		Responsibilities: v.items(responsibilitiesAliases),
		Link:             v.text(linkAliases),
	}

	if in.Title == "" && in.Company == "" && in.Location == "" {
		return nil, false
	}
	// unknown levels are dropped so salary inference applies
	if u, ok := taxonomy.ParseUrgency(v.text(urgencyAliases)); ok {
		in.Urgency = u
	}
	return in, true
}

// lookup resolves aliases against the row, exact header first and then
// case-insensitively for ASCII headers like "Title".
type lookup struct {
	exact  map[string]any
	folded map[string]any
}

func newLookup(values map[string]any) lookup {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]any, len(values))
	for _, k := range keys {
		fk := strings.ToLower(k)
		if _, ok := folded[fk]; !ok {
			folded[fk] = values[k]
		}
	}
	return lookup{exact: values, folded: folded}
}

func (l lookup) raw(aliases []string) any {
	for _, a := range aliases {
		if v, ok := l.exact[a]; ok && !blank(v) {
			return v
		}
		if v, ok := l.folded[strings.ToLower(a)]; ok && !blank(v) {
			return v
		}
	}
	return nil
}

func (l lookup) text(aliases []string) string {
	switch v := l.raw(aliases).(type) {
	case []string:
		return strings.Join(trimAll(v), ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, scalar(p))
		}
		return strings.Join(trimAll(parts), ", ")
	default:
		return scalar(v)
	}
}

// items returns list-valued fields. Cells that already hold a sequence are
// passed through unchanged; text is split with SplitItems.
func (l lookup) items(aliases []string) []string {
	switch v := l.raw(aliases).(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, p := range v {
			out = append(out, scalar(p))
		}
		return out
	default:
		return SplitItems(scalar(v))
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func trimAll(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
