package service

import (
	"errors"
	"strings"

	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/database"

	"gorm.io/gorm"
)

// Publisher pushes events to the live dashboard feed.
type Publisher interface {
	Publish(event ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Actor is the staff member behind a command, as taken from the session.
type Actor struct {
	ID        string
	Name      string
	Email     string
	Superuser bool
}

// SystemActor is used for work nobody asked for directly (seeding, rule engine).
var SystemActor = Actor{ID: "system", Name: "System"}

func (a Actor) label() string {
	if a.Name != "" {
		return a.Name
	}
	if a.ID != "" {
		return a.ID
	}
	return SystemActor.Name
}

func (a Actor) eventUser() *ws.EventUser {
	if a.ID == "" {
		return nil
	}
	return &ws.EventUser{ID: a.ID, Name: a.Name, Email: a.Email}
}

// storeErr maps a repository error onto the coded taxonomy.
func storeErr(err error, entity, action string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case database.IsUniqueViolation(err):
		return apperr.Wrap(apperr.CodeConflict, err, entity+" already exists")
	case database.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.CodeConflict, err, entity+" is still referenced")
	default:
		return apperr.Internal(err, "Error "+action+" "+strings.ToLower(entity))
	}
}
