package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
)

const commentMaxLength = 255

// CommentHandler serves posting and removing comments on figures.
type CommentHandler struct {
	Comments repository.CommentRepository
	Figures  repository.FigureRepository
	Sessions *SessionManager
	Renderer *Renderer
	Decider  *permissions.Decider
	Env      crud.Env
}

// Add posts a comment on a figure.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	figure, err := h.Figures.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("failed to load figure: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	figureURL := "/figures/" + figure.Slug

	content := strings.TrimSpace(r.PostFormValue("content"))
	switch {
	case content == "":
		h.Sessions.AddFlash(w, r, "error", "A comment cannot be empty")
	// characters, not bytes: the form's maxlength counts characters too
	case utf8.RuneCountInString(content) > commentMaxLength:
		h.Sessions.AddFlash(w, r, "error", "Comments are limited to 255 characters")
	default:
		comment := &models.Comment{
			Content:  content,
			AuthorID: CurrentUser(r).ID,
			FigureID: figure.ID,
		}
		if err := h.Comments.Create(comment); err != nil {
			log.Printf("failed to save comment on figure %d: %v", figure.ID, err)
			h.Sessions.AddFlash(w, r, "error", "The comment could not be saved")
		} else {
			h.Sessions.AddFlash(w, r, "success", "Comment posted")
		}
	}
	http.Redirect(w, r, figureURL, http.StatusSeeOther)
}

// Delete removes a comment; only its author may do so.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	user := CurrentUser(r)

	res := crud.Resource[models.Comment]{
		Label:   "comment",
		TypeTag: "comment",
		New:     func() *models.Comment { return &models.Comment{} },
		Load: func(id uint) (*models.Comment, error) {
			comment, err := h.Comments.GetByID(id)
			return comment, mapNotFound(err)
		},
		Authorize: func(comment *models.Comment) bool {
			return h.Decider.Decide(user, permissions.CommentDelete, comment)
		},
		Delete: func(comment *models.Comment) error {
			return h.Comments.Delete(comment.ID)
		},
		SuccessURL: func(comment *models.Comment) string {
			if figure, err := h.Figures.GetByID(comment.FigureID); err == nil {
				return "/figures/" + figure.Slug
			}
			return "/"
		},
		FailureURL: "/",
	}

	outcome := crud.Delete(h.Env, r, res, id, string(permissions.CommentDelete))
	h.Renderer.Finish(w, r, outcome)
}
