package models

import (
	"strings"

	"github.com/google/uuid"
)

// ProjectType classifies a portfolio project.
type ProjectType string

const (
	ProjectResidential ProjectType = "residential"
	ProjectCommercial  ProjectType = "commercial"
	ProjectRenovation  ProjectType = "renovation"
	ProjectInterior    ProjectType = "interior"
	ProjectLandscape   ProjectType = "landscape"
)

// BudgetRange is the coarse budget bucket used both for projects and for
// the budget preference.
type BudgetRange string

const (
	BudgetUnder50K BudgetRange = "under_50k"
	Budget50To200K BudgetRange = "50k_200k"
	Budget200KTo1M BudgetRange = "200k_1m"
	BudgetOver1M   BudgetRange = "over_1m"
)

// Project is one card in the portfolio gallery. The identifier is generated
// at creation time and stays stable for the session, so media uploaded
// after remote creation can be tagged to the right project.
type Project struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        ProjectType  `json:"type"`
	Location    string       `json:"location"`
	Budget      BudgetRange  `json:"budget"`
	Description string       `json:"description"`
	Media       []Attachment `json:"media"`
}

// NewProject creates an empty project card with a fresh identifier.
func NewProject() Project {
	return Project{ID: uuid.NewString()}
}

// Complete reports whether every field is populated and at least one media
// file is attached. Incomplete projects may live in the draft but block the
// aggregate submit gate.
func (p *Project) Complete() bool {
	return strings.TrimSpace(p.Title) != "" &&
		p.Type != "" &&
		strings.TrimSpace(p.Location) != "" &&
		p.Budget != "" &&
		strings.TrimSpace(p.Description) != "" &&
		len(p.Media) > 0
}

// HasAnyField reports whether the user has touched the project at all.
// The per-step gate for the gallery only needs one touched project.
func (p *Project) HasAnyField() bool {
	return strings.TrimSpace(p.Title) != "" ||
		p.Type != "" ||
		strings.TrimSpace(p.Location) != "" ||
		p.Budget != "" ||
		strings.TrimSpace(p.Description) != "" ||
		len(p.Media) > 0
}

func (p Project) clone() Project {
	c := p
	c.Media = cloneAttachments(p.Media)
	return c
}

// Add appends a new empty project card and returns it.
func (s *ProjectsSection) Add() *Project {
	s.Projects = append(s.Projects, NewProject())
	return &s.Projects[len(s.Projects)-1]
}

// Remove deletes the project with the given id. The first project is not
// removable; removing it or an unknown id is a no-op returning false.
func (s *ProjectsSection) Remove(id string) bool {
	for i := range s.Projects {
		if s.Projects[i].ID != id {
			continue
		}
		if i == 0 {
			return false
		}
		s.Projects = append(s.Projects[:i], s.Projects[i+1:]...)
		return true
	}
	return false
}

// Find returns the project with the given id, or nil.
func (s *ProjectsSection) Find(id string) *Project {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i]
		}
	}
	return nil
}
