// Package policy decides whether an identity may perform an action on a
// resource. Every service consults Authorize before it mutates anything.
package policy

import (
	"errors"
	"fmt"

	"lemari/internal/models"
)

// Action is an operation a caller attempts on a resource type or instance.
type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDelete        Action = "delete"
)

// ReadOnly reports whether the action never mutates state.
func (a Action) ReadOnly() bool {
	return a == ActionList || a == ActionRetrieve
}

func (a Action) verb() string {
	switch a {
	case ActionUpdate, ActionPartialUpdate:
		return "edit"
	case ActionDelete:
		return "delete"
	case ActionCreate:
		return "create"
	default:
		return "view"
	}
}

var (
	// ErrUnauthenticated is returned when an anonymous caller attempts a
	// mutating action.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrPermissionDenied is wrapped by errors returned when an
	// authenticated caller does not own the resource.
	ErrPermissionDenied = errors.New("you do not have permission")
)

// Resource is anything with a single owning user.
type Resource interface {
	OwnerID() string
	Kind() string
}

// Authorize applies the access rules. actor is nil for anonymous callers
// and resource is nil for type-level actions such as list and create.
//
// Reads are open to everyone, every other action needs an identity, and
// instance-level edits and deletes need the actor to own the resource.
func Authorize(actor *models.User, action Action, resource Resource) error {
	if action.ReadOnly() {
		return nil
	}
	if actor == nil {
		return ErrUnauthenticated
	}
	if resource == nil || action == ActionCreate {
		return nil
	}
	if resource.OwnerID() != actor.ID {
		return fmt.Errorf("%w to %s this %s", ErrPermissionDenied, action.verb(), resource.Kind())
	}
	return nil
}

// Authenticated fails with ErrUnauthenticated for anonymous callers. It is
// used by endpoints that are private even for reads.
func Authenticated(actor *models.User) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	return nil
}
