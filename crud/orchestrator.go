// Package crud implements the generic create/edit/delete workflow shared by
// every entity family. Each family describes itself to the orchestrator with
// a Resource capability struct instead of subclassing a base controller.
package crud

import (
	"errors"
	"log"
	"net/http"
)

// ErrNotFound is returned by Resource.Load when the id does not resolve.
var ErrNotFound = errors.New("entity not found")

// CSRFVerifier validates anti-forgery tokens keyed by an action name and
// entity id.
type CSRFVerifier interface {
	Verify(r *http.Request, action string, id uint) bool
}

// Env carries the collaborators shared by every resource.
type Env struct {
	CSRF      CSRFVerifier
	Lifecycle *DetachRegistry
}

// Resource describes one entity family to the orchestrator.
type Resource[T any] struct {
	// Label names the entity in user-facing messages ("figure", "video").
	Label string
	// TypeTag keys lifecycle detach rules for this family.
	TypeTag string

	New  func() *T
	Load func(id uint) (*T, error) // must return ErrNotFound on a miss

	// Bind applies the request body to the entity. submitted is false when
	// the request carried no form submission, which selects the render path.
	Bind func(r *http.Request, entity *T) (submitted bool, err error)

	// Validate returns the aggregated field error messages, empty when valid.
	Validate func(entity *T) []string

	// Authorize gates the action once the entity is loaded; nil means open.
	Authorize func(entity *T) bool

	// Hook runs type-specific side effects after validation, before save.
	Hook func(r *http.Request, entity *T) error

	Save   func(entity *T) error
	Delete func(entity *T) error

	SuccessURL func(entity *T) string
	FailureURL string
	// NotFoundURL receives lookup misses. It must not point back at a page
	// that needs the missing entity, or the redirect loops; empty falls back
	// to FailureURL.
	NotFoundURL string
}

func (res Resource[T]) notFoundURL() string {
	if res.NotFoundURL != "" {
		return res.NotFoundURL
	}
	return res.FailureURL
}

// Create runs the generic create skeleton: instantiate, bind, validate,
// hook, persist. A request without a submission yields the render sentinel.
func Create[T any](r *http.Request, res Resource[T]) (*T, Outcome) {
	entity := res.New()

	submitted, err := res.Bind(r, entity)
	if err != nil {
		return entity, redirect(res.FailureURL, Failure("the submitted form could not be read"))
	}
	if !submitted {
		return entity, render()
	}
	if res.Authorize != nil && !res.Authorize(entity) {
		return entity, forbidden()
	}
	if msgs := res.Validate(entity); len(msgs) > 0 {
		return entity, redirect(res.FailureURL, failures(msgs)...)
	}
	if res.Hook != nil {
		if err := res.Hook(r, entity); err != nil {
			log.Printf("crud: %s create hook failed: %v", res.Label, err)
			return entity, redirect(res.FailureURL, Failure("the "+res.Label+" could not be saved"))
		}
	}
	if err := res.Save(entity); err != nil {
		log.Printf("crud: failed to save new %s: %v", res.Label, err)
		return entity, redirect(res.FailureURL, Failure("the "+res.Label+" could not be saved"))
	}
	return entity, redirect(res.SuccessURL(entity), Success("the "+res.Label+" has been created"))
}

// Edit runs the generic edit skeleton. A lookup miss is its own failure path,
// distinct from validation failure.
func Edit[T any](r *http.Request, res Resource[T], id uint) (*T, Outcome) {
	entity, err := res.Load(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, redirect(res.notFoundURL(), Failure("the requested "+res.Label+" does not exist"))
		}
		log.Printf("crud: failed to load %s %d: %v", res.Label, id, err)
		return nil, redirect(res.FailureURL, Failure("the "+res.Label+" could not be loaded"))
	}
	if res.Authorize != nil && !res.Authorize(entity) {
		return entity, forbidden()
	}

	submitted, err := res.Bind(r, entity)
	if err != nil {
		return entity, redirect(res.FailureURL, Failure("the submitted form could not be read"))
	}
	if !submitted {
		return entity, render()
	}
	if msgs := res.Validate(entity); len(msgs) > 0 {
		return entity, redirect(res.FailureURL, failures(msgs)...)
	}
	if res.Hook != nil {
		if err := res.Hook(r, entity); err != nil {
			log.Printf("crud: %s edit hook failed: %v", res.Label, err)
			return entity, redirect(res.FailureURL, Failure("the "+res.Label+" could not be saved"))
		}
	}
	if err := res.Save(entity); err != nil {
		log.Printf("crud: failed to save %s %d: %v", res.Label, id, err)
		return entity, redirect(res.FailureURL, Failure("the "+res.Label+" could not be saved"))
	}
	return entity, redirect(res.SuccessURL(entity), Success("the "+res.Label+" has been updated"))
}

// Delete runs the generic delete skeleton: load, authorize, verify the
// per-entity anti-forgery token, run detach rules, then remove. A CSRF
// mismatch is a reported failure, never a mutation.
func Delete[T any](env Env, r *http.Request, res Resource[T], id uint, action string) Outcome {
	entity, err := res.Load(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return redirect(res.notFoundURL(), Failure("the requested "+res.Label+" does not exist"))
		}
		log.Printf("crud: failed to load %s %d: %v", res.Label, id, err)
		return redirect(res.FailureURL, Failure("the "+res.Label+" could not be loaded"))
	}
	if res.Authorize != nil && !res.Authorize(entity) {
		return forbidden()
	}
	if env.CSRF == nil || !env.CSRF.Verify(r, action, id) {
		return redirect(res.FailureURL, Failure("invalid security token, the "+res.Label+" was not deleted"))
	}
	if env.Lifecycle != nil {
		if err := env.Lifecycle.Detach(res.TypeTag, entity); err != nil {
			log.Printf("crud: detach before deleting %s %d failed: %v", res.Label, id, err)
			return redirect(referrerOr(r, res.FailureURL), Failure("the "+res.Label+" could not be deleted"))
		}
	}
	if err := res.Delete(entity); err != nil {
		log.Printf("crud: failed to delete %s %d: %v", res.Label, id, err)
		return redirect(referrerOr(r, res.FailureURL), Failure("the "+res.Label+" could not be deleted"))
	}
	return redirect(res.SuccessURL(entity), Success("the "+res.Label+" has been deleted"))
}

// referrerOr prefers the page the user came from over the fallback route.
func referrerOr(r *http.Request, fallback string) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return fallback
}
