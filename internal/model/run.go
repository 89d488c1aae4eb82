package model

import "time"

// RunStatus tracks the lifecycle of a consolidation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// SourceCount summarizes what happened to one source's documents during a run.
type SourceCount struct {
	Seen    int `json:"seen"`
	Skipped int `json:"skipped"`
	Created int `json:"created"`
	Merged  int `json:"merged"`
}

// Run records one full consolidation pass over all sources.
type Run struct {
	ID         string                 `json:"id"`
	Status     RunStatus              `json:"status"`
	Sources    map[string]SourceCount `json:"sources"`
	Profiles   int                    `json:"profiles"`
	Error      string                 `json:"error,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at,omitzero"`
}
