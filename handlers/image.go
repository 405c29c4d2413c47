package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/media"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
	"github.com/trickdeck/trickdeckbackend/utils"
)

const maxUploadBytes = 20 << 20 // request-level cap, configurable in main

// ImageHandler serves gallery uploads and per-image edit/delete.
type ImageHandler struct {
	Images    repository.ImageRepository
	Figures   repository.FigureRepository
	Processor *media.Processor
	Store     media.Store
	Sessions  *SessionManager
	Renderer  *Renderer
	Decider   *permissions.Decider
	Env       crud.Env
	MaxUpload int64
}

type imageFormView struct {
	Figure *models.Figure
	Image  *models.Image
	Errors []string
	IsNew  bool
}

func (h *ImageHandler) maxUpload() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return maxUploadBytes
}

// loadOwningFigure resolves the {slug} route segment, 404ing on a miss.
func (h *ImageHandler) loadOwningFigure(w http.ResponseWriter, r *http.Request) *models.Figure {
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

// Add serves the upload form and handles the multipart submission.
func (h *ImageHandler) Add(w http.ResponseWriter, r *http.Request) {
	figure := h.loadOwningFigure(w, r)
	if figure == nil {
		return
	}
	if !h.Decider.Decide(CurrentUser(r), permissions.FigureEdit, figure) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	view := imageFormView{Figure: figure, Image: &models.Image{}, IsNew: true}
	if r.Method != http.MethodPost {
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		view.Errors = []string{"The upload is too large or malformed"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		view.Errors = []string{"Choose a file to upload"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}
	defer file.Close()

	if !utils.IsRasterImage(header.Filename) {
		view.Errors = []string{"That file type is not supported, upload a photo"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("failed to read upload for figure %d: %v", figure.ID, err)
		view.Errors = []string{"The upload could not be read"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	relPath, filename, meta, err := h.Processor.ProcessFigureImage(data)
	if err != nil {
		view.Errors = []string{"That file does not look like a supported image"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	url := "/media/" + relPath
	image := &models.Image{
		URL:         &url,
		Filename:    filename,
		FigureID:    figure.ID,
		TakenAt:     meta.TakenAt,
		CameraModel: meta.CameraModel,
	}
	if alt := r.PostFormValue("alt"); alt != "" {
		image.Alt = &alt
	}

	if err := h.Images.Create(image); err != nil {
		log.Printf("failed to save image row for figure %d: %v", figure.ID, err)
		// roll the stored file back so the store holds no orphans
		if derr := h.Store.Delete(relPath); derr != nil {
			log.Printf("failed to remove orphaned upload %s: %v", relPath, derr)
		}
		view.Errors = []string{"The image could not be saved"}
		h.Renderer.Render(w, r, "image_form", "Add an image", view)
		return
	}

	h.Sessions.AddFlash(w, r, "success", "Image added")
	http.Redirect(w, r, "/figures/"+figure.Slug, http.StatusSeeOther)
}

func (h *ImageHandler) imageResource(r *http.Request, failureURL string) crud.Resource[models.Image] {
	user := CurrentUser(r)
	return crud.Resource[models.Image]{
		Label:   "image",
		TypeTag: "image",
		New:     func() *models.Image { return &models.Image{} },
		Load: func(id uint) (*models.Image, error) {
			image, err := h.Images.GetByID(id)
			return image, mapNotFound(err)
		},
		Bind: func(r *http.Request, image *models.Image) (bool, error) {
			if r.Method != http.MethodPost {
				return false, nil
			}
			if err := r.ParseForm(); err != nil {
				return true, err
			}
			if alt := r.PostFormValue("alt"); alt != "" {
				image.Alt = &alt
			} else {
				image.Alt = nil
			}
			return true, nil
		},
		Validate: func(*models.Image) []string { return nil },
		Authorize: func(image *models.Image) bool {
			return h.Decider.Decide(user, permissions.ImageEdit, image)
		},
		Save:   h.Images.Update,
		Delete: h.removeImage,
		SuccessURL: func(image *models.Image) string {
			if image.Figure != nil {
				return "/figures/" + image.Figure.Slug
			}
			return "/"
		},
		FailureURL: failureURL,
	}
}

// removeImage deletes the row and then the stored file. A failed file
// removal is logged, not surfaced: the row is already gone.
func (h *ImageHandler) removeImage(image *models.Image) error {
	if err := h.Images.Delete(image.ID); err != nil {
		return err
	}
	if image.URL != nil {
		relPath := relMediaPath(*image.URL)
		if err := h.Store.Delete(relPath); err != nil {
			log.Printf("failed to remove stored file %s for image %d: %v", relPath, image.ID, err)
		}
	}
	return nil
}

// Edit updates the alt text of an existing image.
func (h *ImageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	figure := h.loadOwningFigure(w, r)
	if figure == nil {
		return
	}
	id, ok := parseID(w, r, "imageID")
	if !ok {
		return
	}

	res := h.imageResource(r, "/figures/"+figure.Slug)
	res.Authorize = func(image *models.Image) bool {
		// the image must sit under the figure named in the route
		if image.FigureID != figure.ID {
			return false
		}
		return h.Decider.Decide(CurrentUser(r), permissions.ImageEdit, image)
	}

	image, outcome := crud.Edit(r, res, id)
	if h.Renderer.Finish(w, r, outcome) {
		return
	}
	h.Renderer.Render(w, r, "image_form", "Edit image", imageFormView{
		Figure: figure,
		Image:  image,
	})
}

// Delete removes an image, detaching it from the figure's main slot first.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	user := CurrentUser(r)

	res := h.imageResource(r, "/")
	res.Authorize = func(image *models.Image) bool {
		return h.Decider.Decide(user, permissions.ImageDelete, image)
	}

	outcome := crud.Delete(h.Env, r, res, id, string(permissions.ImageDelete))
	h.Renderer.Finish(w, r, outcome)
}

// relMediaPath strips the public /media/ prefix off a stored URL.
func relMediaPath(url string) string {
	const prefix = "/media/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):]
	}
	return url
}
