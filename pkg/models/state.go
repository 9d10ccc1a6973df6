// Package models defines the core domain models for project task tracking.
package models

// State is a named stage in a project's task lifecycle (e.g. "In Progress").
// Position establishes a stable display order; it says nothing about which
// moves between states are legal. That is the workflow's job.
type State struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"       validate:"required,min=1"`
	Position  int    `json:"position"`
}
