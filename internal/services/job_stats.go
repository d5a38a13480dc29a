package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/chemtalent/jobchain/internal/models"
	"github.com/chemtalent/jobchain/internal/taxonomy"
)

type LayerStats struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	TotalJobs int            `json:"total_jobs"`
	AvgSalary string         `json:"avg_salary"`
	HotSkills []string       `json:"hot_skills"`
	Nodes     map[string]int `json:"nodes"`
}

type JobStats struct {
	Industry  string         `json:"industry,omitempty"`
	TotalJobs int            `json:"total_jobs"`
	ByUrgency map[string]int `json:"by_urgency"`
	Layers    []LayerStats   `json:"layers,omitempty"`
	ByLayer   map[string]int `json:"by_layer"`
}

// salaryFigure matches "8-13k", "20k" or "1-2万"; the unit itself is not
// interpreted, only the numbers before it.
var salaryFigure = regexp.MustCompile(`(\d+)-?(\d+)?[kK万]`)

const salaryUnknown = "面议"

// ComputeStats summarizes rows by urgency and layer. When industry is set the
// layers follow that industry's table order and carry its names and hot
// skills; otherwise only the flat counts are filled in.
func ComputeStats(rules *taxonomy.Rules, industry string, rows []models.JobPosition) *JobStats {
	st := &JobStats{
		Industry:  industry,
		TotalJobs: len(rows),
		ByUrgency: map[string]int{
			string(taxonomy.UrgencyLow):    0,
			string(taxonomy.UrgencyMedium): 0,
			string(taxonomy.UrgencyHigh):   0,
		},
		ByLayer: map[string]int{},
	}

	salaries := map[string][]float64{}
	nodes := map[string]map[string]int{}
	for _, r := range rows {
		st.ByUrgency[r.Urgency]++
		st.ByLayer[r.Layer]++

		if nodes[r.Layer] == nil {
			nodes[r.Layer] = map[string]int{}
		}
		nodes[r.Layer][r.NodeID]++

		if v, ok := salaryMidpoint(r.Salary); ok {
			salaries[r.Layer] = append(salaries[r.Layer], v)
		}
	}

	if industry == "" || rules == nil {
		return st
	}
	ir, ok := rules.Industry(taxonomy.Industry(industry))
	if !ok {
		return st
	}
	for _, l := range ir.Layers {
		ls := LayerStats{
			ID:        l.ID,
			Name:      l.Name,
			TotalJobs: st.ByLayer[l.ID],
			AvgSalary: averageSalary(salaries[l.ID]),
			HotSkills: l.HotSkills,
			Nodes:     nodes[l.ID],
		}
		if ls.Nodes == nil {
			ls.Nodes = map[string]int{}
		}
		st.Layers = append(st.Layers, ls)
	}
	return st
}

func salaryMidpoint(s string) (float64, bool) {
	m := salaryFigure.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	lo, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	hi := lo
	if m[2] != "" {
		if hi, err = strconv.Atoi(m[2]); err != nil {
			return 0, false
		}
	}
	return float64(lo+hi) / 2, true
}

func averageSalary(vals []float64) string {
	if len(vals) == 0 {
		return salaryUnknown
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%dk左右", int(math.Round(sum/float64(len(vals)))))
}
