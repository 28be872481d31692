// Package domain contains the core entities of the incident tracker.
package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity is the criticality tier of an incident.
type Severity string

// Severity levels, ordered from most to least critical.
const (
	SeveritySEV1 Severity = "SEV1"
	SeveritySEV2 Severity = "SEV2"
	SeveritySEV3 Severity = "SEV3"
	SeveritySEV4 Severity = "SEV4"
)

// Severities lists all severities from most to least critical.
var Severities = []Severity{SeveritySEV1, SeveritySEV2, SeveritySEV3, SeveritySEV4}

var severityNames = map[Severity]string{
	SeveritySEV1: "Critical",
	SeveritySEV2: "High",
	SeveritySEV3: "Medium",
	SeveritySEV4: "Low",
}

// IsValid checks if the severity is one of the known levels.
func (s Severity) IsValid() bool {
	_, ok := severityNames[s]
	return ok
}

// Rank returns the position of the severity, 1 being the most critical.
// Unknown severities rank 0.
func (s Severity) Rank() int {
	for i, v := range Severities {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// Label returns a human readable label, e.g. "SEV1 - Critical".
func (s Severity) Label() string {
	name, ok := severityNames[s]
	if !ok {
		return string(s)
	}
	return fmt.Sprintf("%s - %s", s, name)
}

// Status is the lifecycle state of an incident.
type Status string

// Incident statuses.
const (
	StatusOpen      Status = "OPEN"
	StatusMitigated Status = "MITIGATED"
	StatusResolved  Status = "RESOLVED"
)

// Statuses lists all statuses in lifecycle order.
var Statuses = []Status{StatusOpen, StatusMitigated, StatusResolved}

// IsValid checks if the status is one of the known states.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusMitigated || s == StatusResolved
}

// Label returns the status title-cased, e.g. "Mitigated".
func (s Status) Label() string {
	// cases.Caser keeps state between calls and is not safe to share.
	return cases.Title(language.English).String(string(s))
}

// Incident is a single tracked operational issue.
type Incident struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Service   string    `json:"service"`
	Severity  Severity  `json:"severity"`
	Status    Status    `json:"status"`
	Owner     *string   `json:"owner"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Option is a value/label pair for an enumerated field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SeverityOptions returns all severities with their labels.
func SeverityOptions() []Option {
	opts := make([]Option, 0, len(Severities))
	for _, s := range Severities {
		opts = append(opts, Option{Value: string(s), Label: s.Label()})
	}
	return opts
}

// StatusOptions returns all statuses with their labels.
func StatusOptions() []Option {
	opts := make([]Option, 0, len(Statuses))
	for _, s := range Statuses {
		opts = append(opts, Option{Value: string(s), Label: s.Label()})
	}
	return opts
}
