package models

import "github.com/chemtalent/jobchain/internal/taxonomy"

// JobInput is one spreadsheet row after header aliasing and value cleanup.
// Empty strings mean the column was absent or blank.
type JobInput struct {
	Title            string
	Company          string
	Location         string
	Salary           string
	Experience       string
	Education        string
	CompanySize      string
	IndustryType     string
	Requirements     []string
	Responsibilities []string
	Urgency          taxonomy.Urgency // empty unless the sheet named a valid level
	Link             string
}
