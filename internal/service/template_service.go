package service

import (
	"context"
	"errors"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/templates"
)

var (
	ErrValidationFailed  = errors.New("validation failed")
	ErrTemplateNameTaken = errors.New("another template already uses this name")
)

// TemplateService manages templates built by hand. Templates derived from
// finished workouts arrive through TrackerService.Finish.
type TemplateService interface {
	List(ctx context.Context, userID, query string) ([]domain.WorkoutTemplate, error)
	Get(ctx context.Context, userID, id string) (domain.WorkoutTemplate, error)
	// Save creates a template, or replaces the one with the same normalized
	// name while keeping its id.
	Save(ctx context.Context, userID, name string, exercises []templates.ExerciseDraft) (tpl domain.WorkoutTemplate, created bool, err error)
	Update(ctx context.Context, userID, id, name string, exercises []templates.ExerciseDraft) (domain.WorkoutTemplate, error)
	Delete(ctx context.Context, userID, id string) error
}

type templateService struct {
	*Workspaces
}

func NewTemplateService(ws *Workspaces) TemplateService {
	return &templateService{Workspaces: ws}
}

func (s *templateService) List(ctx context.Context, userID, query string) (out []domain.WorkoutTemplate, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = templates.Filter(ws.templates, query)
		return nil
	})
	return out, err
}

func (s *templateService) Get(ctx context.Context, userID, id string) (out domain.WorkoutTemplate, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		tpl, ok := findTemplate(ws.templates, id)
		if !ok {
			return ErrTemplateNotFound
		}
		out = tpl
		return nil
	})
	return out, err
}

func (s *templateService) Save(ctx context.Context, userID, name string, exercises []templates.ExerciseDraft) (out domain.WorkoutTemplate, created bool, err error) {
	built, err := templates.Build(name, exercises, s.deps.Now())
	if err != nil {
		return out, false, mapTemplateErr(err)
	}
	err = s.with(ctx, userID, func(ws *Workspace) error {
		ws.templates, out, created = templates.Upsert(ws.templates, built, s.deps.NewID)
		s.submit(ws, s.templateUpsert(userID, out))
		return nil
	})
	return out, created, err
}

func (s *templateService) Update(ctx context.Context, userID, id, name string, exercises []templates.ExerciseDraft) (out domain.WorkoutTemplate, err error) {
	built, err := templates.Build(name, exercises, s.deps.Now())
	if err != nil {
		return out, mapTemplateErr(err)
	}
	built.ID = id
	err = s.with(ctx, userID, func(ws *Workspace) error {
		list, tpl, err := templates.Replace(ws.templates, built)
		if err != nil {
			return mapTemplateErr(err)
		}
		ws.templates, out = list, tpl
		s.submit(ws, s.templateUpsert(userID, out))
		return nil
	})
	return out, err
}

// Delete removes the template only; past sessions are kept.
func (s *templateService) Delete(ctx context.Context, userID, id string) error {
	return s.with(ctx, userID, func(ws *Workspace) error {
		list, ok := templates.Remove(ws.templates, id)
		if !ok {
			return ErrTemplateNotFound
		}
		ws.templates = list
		s.submit(ws, s.templateDelete(userID, id))
		return nil
	})
}

func mapTemplateErr(err error) error {
	switch {
	case errors.Is(err, templates.ErrEmptyName):
		return errors.Join(ErrValidationFailed, err)
	case errors.Is(err, templates.ErrDuplicateName):
		return ErrTemplateNameTaken
	case errors.Is(err, templates.ErrNotFound):
		return ErrTemplateNotFound
	default:
		return err
	}
}
