package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
)

// VideoHandler serves embed management on a figure.
type VideoHandler struct {
	Videos   repository.VideoRepository
	Figures  repository.FigureRepository
	Sessions *SessionManager
	Renderer *Renderer
	Validate *validator.Validate
	Decider  *permissions.Decider
	Env      crud.Env
}

type videoForm struct {
	EmbedCode string `validate:"required,iframe"`
}

type videoFormView struct {
	Figure *models.Figure
	Video  *models.Video
	Errors []string
	IsNew  bool
}

func (h *VideoHandler) bindVideo(r *http.Request, video *models.Video) (bool, error) {
	if r.Method != http.MethodPost {
		return false, nil
	}
	if err := r.ParseForm(); err != nil {
		return true, err
	}
	video.EmbedCode = r.PostFormValue("embed_code")
	return true, nil
}

func (h *VideoHandler) validateVideo(video *models.Video) []string {
	return formMessages(h.Validate.Struct(videoForm{EmbedCode: video.EmbedCode}))
}

func (h *VideoHandler) videoResource(figure *models.Figure, failureURL string) crud.Resource[models.Video] {
	return crud.Resource[models.Video]{
		Label:   "video",
		TypeTag: "video",
		New: func() *models.Video {
			v := &models.Video{}
			if figure != nil {
				v.FigureID = figure.ID
			}
			return v
		},
		Load: func(id uint) (*models.Video, error) {
			video, err := h.Videos.GetByID(id)
			return video, mapNotFound(err)
		},
		Bind:     h.bindVideo,
		Validate: h.validateVideo,
		Save: func(video *models.Video) error {
			if video.ID == 0 {
				return h.Videos.Create(video)
			}
			return h.Videos.Update(video)
		},
		Delete: func(video *models.Video) error {
			return h.Videos.Delete(video.ID)
		},
		SuccessURL: func(video *models.Video) string {
			if figure != nil {
				return "/figures/" + figure.Slug
			}
			if video.Figure != nil {
				return "/figures/" + video.Figure.Slug
			}
			return "/"
		},
		FailureURL: failureURL,
	}
}

// loadOwningFigure resolves the {slug} route segment, 404ing on a miss.
func (h *VideoHandler) loadOwningFigure(w http.ResponseWriter, r *http.Request) *models.Figure {
	figure, err := h.Figures.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil
		}
		log.Printf("failed to load figure: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	return figure
}

// Add serves the add-video form and its submission. Creation is gated on
// the owning figure, not the not-yet-persisted video.
func (h *VideoHandler) Add(w http.ResponseWriter, r *http.Request) {
	figure := h.loadOwningFigure(w, r)
	if figure == nil {
		return
	}
	if !h.Decider.Decide(CurrentUser(r), permissions.VideoCreate, figure) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	res := h.videoResource(figure, "/figures/"+figure.Slug+"/videos/new")
	video, outcome := crud.Create(r, res)
	if h.Renderer.Finish(w, r, outcome) {
		return
	}
	h.Renderer.Render(w, r, "video_form", "Add a video", videoFormView{
		Figure: figure,
		Video:  video,
		IsNew:  true,
	})
}

// Edit updates the embed code of an existing video.
func (h *VideoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	figure := h.loadOwningFigure(w, r)
	if figure == nil {
		return
	}
	id, ok := parseID(w, r, "videoID")
	if !ok {
		return
	}
	user := CurrentUser(r)

	res := h.videoResource(figure, "/figures/"+figure.Slug)
	res.Authorize = func(video *models.Video) bool {
		if video.FigureID != figure.ID {
			return false
		}
		return h.Decider.Decide(user, permissions.VideoEdit, video)
	}

	video, outcome := crud.Edit(r, res, id)
	if h.Renderer.Finish(w, r, outcome) {
		return
	}
	h.Renderer.Render(w, r, "video_form", "Edit video", videoFormView{
		Figure: figure,
		Video:  video,
	})
}

// Delete removes a video embed.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	user := CurrentUser(r)

	res := h.videoResource(nil, "/")
	res.Authorize = func(video *models.Video) bool {
		return h.Decider.Decide(user, permissions.VideoDelete, video)
	}

	outcome := crud.Delete(h.Env, r, res, id, string(permissions.VideoDelete))
	h.Renderer.Finish(w, r, outcome)
}
