package modules

import (
	"context"
	"fmt"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// PD is the research and development module.
type PD struct {
	Projects *Resource[models.RDProject]

	db *bizdesk.DB
}

func newPD(db *bizdesk.DB, gate Authorizer) (*PD, error) {
	projects, err := newResource[models.RDProject](db, gate, models.ModulePD)
	if err != nil {
		return nil, err
	}
	return &PD{Projects: projects, db: db}, nil
}

// AddUpdate appends a progress note to a project.
func (p *PD) AddUpdate(ctx context.Context, id, content, responsible string) (models.ProjectUpdate, error) {
	if content == "" {
		return models.ProjectUpdate{}, bizdesk.ValidationErrors{{Field: "content", Message: "field is required"}}
	}
	u := models.ProjectUpdate{Content: content, Responsible: responsible}
	saved, err := p.Projects.mutate(ctx, id, func(rec *models.RDProject) error {
		rec.Updates = append(rec.Updates, u)
		return nil
	})
	if err != nil {
		return models.ProjectUpdate{}, err
	}
	return saved.Updates[len(saved.Updates)-1], nil
}

// SetMetrics replaces the metrics of a project.
func (p *PD) SetMetrics(ctx context.Context, id string, m models.ProjectMetrics) (models.RDProject, error) {
	if m.TestsSuccessful > m.TestsCompleted {
		return models.RDProject{}, bizdesk.ValidationErrors{{
			Field:   "metrics.testsSuccessful",
			Message: fmt.Sprintf("%d successful tests exceed %d completed", m.TestsSuccessful, m.TestsCompleted),
		}}
	}
	return p.Projects.mutate(ctx, id, func(rec *models.RDProject) error {
		rec.Metrics = m
		return nil
	})
}

// SetStatus moves a project to another phase. Completing a project sets its
// progress to 100 and its actual end date.
func (p *PD) SetStatus(ctx context.Context, id string, status models.ProjectStatus) (models.RDProject, error) {
	return p.Projects.mutate(ctx, id, func(rec *models.RDProject) error {
		rec.Status = status
		if status == models.ProjectCompleted {
			rec.Progress = 100
			rec.ActualEndDate = models.NewDate(p.db.Now())
		}
		return bizdesk.ValidateModel(rec)
	})
}

// SetProgress records the completion percentage, clamped to 0..100.
func (p *PD) SetProgress(ctx context.Context, id string, progress int) (models.RDProject, error) {
	return p.Projects.mutate(ctx, id, func(rec *models.RDProject) error {
		rec.Progress = progress
		return nil
	})
}

// PDStats are the R&D dashboard figures.
type PDStats struct {
	Total       int `json:"total"`
	InProgress  int `json:"inProgress"`
	Research    int `json:"research"`
	Completed   int `json:"completed"`
	AvgProgress int `json:"avgProgress"`
}

// Stats counts projects by phase. Projects in development are in progress.
func (p *PD) Stats(ctx context.Context) (PDStats, error) {
	var st PDStats
	projects, err := p.Projects.List(ctx)
	if err != nil {
		return st, err
	}
	st.Total = len(projects)
	sum := 0
	for _, pr := range projects {
		switch pr.Status {
		case models.ProjectDevelopment:
			st.InProgress++
		case models.ProjectResearch:
			st.Research++
		case models.ProjectCompleted:
			st.Completed++
		}
		sum += pr.Progress
	}
	if st.Total > 0 {
		st.AvgProgress = sum / st.Total
	}
	return st, nil
}
