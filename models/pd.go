package models

import (
	"context"
	"time"

	"github.com/dwoolworth/bizdesk"
)

// ProjectStatus is the phase of an R&D project.
type ProjectStatus string

const (
	ProjectResearch    ProjectStatus = "research"
	ProjectDevelopment ProjectStatus = "development"
	ProjectTesting     ProjectStatus = "testing"
	ProjectCompleted   ProjectStatus = "completed"
)

// ProjectUpdate is one entry of a project's progress log.
type ProjectUpdate struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Responsible string    `json:"responsible"`
	Date        time.Time `json:"date"`
}

// ProjectMetrics tracks cost and test counts of a project.
type ProjectMetrics struct {
	CostToDate      float64 `json:"costToDate"`
	DevelopmentTime int     `json:"developmentTime"`
	TestsCompleted  int     `json:"testsCompleted"`
	TestsSuccessful int     `json:"testsSuccessful"`
}

// RDProject is a research and development project.
type RDProject struct {
	bizdesk.Model
	Name            string          `json:"name"            bizdesk:"required"`
	Description     string          `json:"description"`
	TargetProduct   string          `json:"targetProduct"`
	Budget          float64         `json:"budget"          bizdesk:"min=0"`
	Responsibles    []string        `json:"responsibles"    bizdesk:"default=[]"`
	Status          ProjectStatus   `json:"status"          bizdesk:"enum=research|development|testing|completed,default=research"`
	Progress        int             `json:"progress"        bizdesk:"min=0,max=100"`
	StartDate       Date            `json:"startDate"       bizdesk:"default=today"`
	ExpectedEndDate Date            `json:"expectedEndDate"`
	ActualEndDate   Date            `json:"actualEndDate,omitempty"`
	Documents       []Document      `json:"documents"       bizdesk:"appendonly,stamp=uploadedAt,default=[]"`
	Updates         []ProjectUpdate `json:"updates"         bizdesk:"appendonly,stamp=date,default=[]"`
	Metrics         ProjectMetrics  `json:"metrics"`
}

// BeforeCreate keeps progress within 0..100.
func (p *RDProject) BeforeCreate(ctx context.Context) error {
	p.Progress = clamp(p.Progress, 0, 100)
	return nil
}

// BeforeSave keeps progress within 0..100.
func (p *RDProject) BeforeSave(ctx context.Context) error {
	p.Progress = clamp(p.Progress, 0, 100)
	return nil
}

func init() {
	register[RDProject](CollRDProjects, ModulePD)
}
