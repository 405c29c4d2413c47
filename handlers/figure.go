package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/crud"
	"github.com/trickdeck/trickdeckbackend/database"
	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
	"github.com/trickdeck/trickdeckbackend/utils"
)

// FigureHandler serves the public catalog plus the figure CRUD pages.
type FigureHandler struct {
	Figures   repository.FigureRepository
	Comments  repository.CommentRepository
	CatalogDB *sql.DB
	Sessions  *SessionManager
	Renderer  *Renderer
	Validate  *validator.Validate
	Decider   *permissions.Decider
	Env       crud.Env
}

// mapNotFound translates gorm's miss sentinel into the orchestrator's.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crud.ErrNotFound
	}
	return err
}

type sortOption struct {
	Value string
	Label string
}

var catalogSorts = []sortOption{
	{Value: database.SortNewest, Label: "Newest first"},
	{Value: database.SortOldest, Label: "Oldest first"},
	{Value: database.SortNameAsc, Label: "Name A-Z"},
	{Value: database.SortNameDesc, Label: "Name Z-A"},
}

type homeView struct {
	Entries    []database.CatalogEntry
	Groups     []string
	Sorts      []sortOption
	Search     string
	Group      string
	Sort       string
	Page       int
	Pages      []int
	TotalPages int
}

// Home renders the searchable, filterable catalog listing.
func (h *FigureHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := database.CatalogFilter{
		Search:  q.Get("q"),
		Group:   q.Get("group"),
		Sort:    q.Get("sort"),
		PerPage: database.DefaultPerPage,
	}
	if !database.IsValidSort(filter.Sort) {
		filter.Sort = database.DefaultSort
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	} else {
		filter.Page = 1
	}

	entries, err := database.ListCatalog(h.CatalogDB, filter)
	if err != nil {
		log.Printf("catalog listing failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	total, err := database.CountCatalog(h.CatalogDB, filter)
	if err != nil {
		log.Printf("catalog count failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	groups, err := database.ListGroups(h.CatalogDB)
	if err != nil {
		log.Printf("group listing failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	totalPages := (total + filter.PerPage - 1) / filter.PerPage
	pages := make([]int, 0, totalPages)
	for p := 1; p <= totalPages; p++ {
		pages = append(pages, p)
	}

	h.Renderer.Render(w, r, "home", "Figures", homeView{
		Entries:    entries,
		Groups:     groups,
		Sorts:      catalogSorts,
		Search:     filter.Search,
		Group:      filter.Group,
		Sort:       filter.Sort,
		Page:       filter.Page,
		Pages:      pages,
		TotalPages: totalPages,
	})
}

type figureShowView struct {
	Figure        *models.Figure
	GalleryImages []models.Image
	CommentCount  int64
	CommentErrors []string

	CanEdit     bool
	CanDelete   bool
	CanAddVideo bool

	DeleteToken         string
	SetMainTokens       map[uint]string
	ImageDeleteTokens   map[uint]string
	VideoDeleteTokens   map[uint]string
	CommentDeleteTokens map[uint]string
}

// Show renders one figure with its gallery, videos and comments.
func (h *FigureHandler) Show(w http.ResponseWriter, r *http.Request) {
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

	commentCount, err := h.Comments.CountByFigure(figure.ID)
	if err != nil {
		log.Printf("comment count failed for figure %d: %v", figure.ID, err)
	}

	// gallery in natural filename order so shot_2 sorts before shot_10
	gallery := make([]models.Image, len(figure.Images))
	copy(gallery, figure.Images)
	sort.SliceStable(gallery, func(i, j int) bool {
		return natsort.Compare(gallery[i].Filename, gallery[j].Filename)
	})

	user := CurrentUser(r)
	view := figureShowView{
		Figure:              figure,
		GalleryImages:       gallery,
		CommentCount:        commentCount,
		CanEdit:             h.Decider.Decide(user, permissions.FigureEdit, figure),
		CanDelete:           h.Decider.Decide(user, permissions.FigureDelete, figure),
		CanAddVideo:         h.Decider.Decide(user, permissions.VideoCreate, figure),
		SetMainTokens:       map[uint]string{},
		ImageDeleteTokens:   map[uint]string{},
		VideoDeleteTokens:   map[uint]string{},
		CommentDeleteTokens: map[uint]string{},
	}

	if view.CanDelete {
		view.DeleteToken = h.Sessions.IssueCSRF(w, r, string(permissions.FigureDelete), figure.ID)
	}
	if view.CanEdit {
		for _, img := range gallery {
			view.SetMainTokens[img.ID] = h.Sessions.IssueCSRF(w, r, "figure.main_image", img.ID)
			view.ImageDeleteTokens[img.ID] = h.Sessions.IssueCSRF(w, r, string(permissions.ImageDelete), img.ID)
		}
		for _, vid := range figure.Videos {
			view.VideoDeleteTokens[vid.ID] = h.Sessions.IssueCSRF(w, r, string(permissions.VideoDelete), vid.ID)
		}
	}
	for i := range figure.Comments {
		c := &figure.Comments[i]
		if h.Decider.Decide(user, permissions.CommentDelete, c) {
			view.CommentDeleteTokens[c.ID] = h.Sessions.IssueCSRF(w, r, string(permissions.CommentDelete), c.ID)
		}
	}

	h.Renderer.Render(w, r, "figure_show", figure.Name, view)
}

type figureForm struct {
	Name        string `validate:"required,min=2,max=100"`
	GroupLabel  string `validate:"required,max=50"`
	Description string `validate:"required"`
}

type figureFormView struct {
	Figure *models.Figure
	Groups []string
	Errors []string
	IsNew  bool
}

func (h *FigureHandler) bindFigure(r *http.Request, figure *models.Figure) (bool, error) {
	if r.Method != http.MethodPost {
		return false, nil
	}
	if err := r.ParseForm(); err != nil {
		return true, err
	}
	figure.Name = r.PostFormValue("name")
	figure.GroupLabel = r.PostFormValue("group_label")
	figure.Description = r.PostFormValue("description")
	return true, nil
}

func (h *FigureHandler) validateFigure(figure *models.Figure) []string {
	form := figureForm{
		Name:        figure.Name,
		GroupLabel:  figure.GroupLabel,
		Description: figure.Description,
	}
	msgs := formMessages(h.Validate.Struct(form))

	// names must stay unique after slugging as well
	if figure.Name != "" {
		existing, err := h.Figures.GetBySlug(utils.Slugify(figure.Name))
		if err == nil && existing.ID != figure.ID {
			msgs = append(msgs, "A figure with that name already exists")
		}
	}
	return msgs
}

func (h *FigureHandler) figureResource(r *http.Request) crud.Resource[models.Figure] {
	user := CurrentUser(r)
	return crud.Resource[models.Figure]{
		Label:   "figure",
		TypeTag: "figure",
		New: func() *models.Figure {
			return &models.Figure{AuthorID: user.ID}
		},
		Load: func(id uint) (*models.Figure, error) {
			figure, err := h.Figures.GetByID(id)
			return figure, mapNotFound(err)
		},
		Bind:     h.bindFigure,
		Validate: h.validateFigure,
		Save: func(figure *models.Figure) error {
			if figure.ID == 0 {
				return h.Figures.Create(figure)
			}
			return h.Figures.Update(figure)
		},
		Delete: func(figure *models.Figure) error {
			return h.Figures.Delete(figure.ID)
		},
		SuccessURL: func(figure *models.Figure) string {
			return "/figures/" + figure.Slug
		},
		FailureURL: "/",
	}
}

// New serves the create-figure form and its submission.
func (h *FigureHandler) New(w http.ResponseWriter, r *http.Request) {
	res := h.figureResource(r)
	res.FailureURL = "/figures/new"

	figure, outcome := crud.Create(r, res)
	if h.Renderer.Finish(w, r, outcome) {
		return
	}
	h.Renderer.Render(w, r, "figure_form", "Add a figure", figureFormView{
		Figure: figure,
		Groups: h.knownGroups(),
		IsNew:  true,
	})
}

// Edit serves the edit-figure form and its submission.
func (h *FigureHandler) Edit(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	user := CurrentUser(r)

	res := h.figureResource(r)
	res.Load = func(uint) (*models.Figure, error) {
		figure, err := h.Figures.GetBySlug(slug)
		return figure, mapNotFound(err)
	}
	res.Authorize = func(figure *models.Figure) bool {
		return h.Decider.Decide(user, permissions.FigureEdit, figure)
	}
	// validation failures re-enter the form; a miss must not, or the
	// redirect would chase its own URL
	res.FailureURL = "/figures/" + slug + "/edit"
	res.NotFoundURL = "/"

	figure, outcome := crud.Edit(r, res, 0)
	if h.Renderer.Finish(w, r, outcome) {
		return
	}
	h.Renderer.Render(w, r, "figure_form", "Edit "+figure.Name, figureFormView{
		Figure: figure,
		Groups: h.knownGroups(),
	})
}

// Delete removes a figure with everything attached to it.
func (h *FigureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	user := CurrentUser(r)

	res := h.figureResource(r)
	res.Authorize = func(figure *models.Figure) bool {
		return h.Decider.Decide(user, permissions.FigureDelete, figure)
	}
	res.SuccessURL = func(*models.Figure) string { return "/" }

	outcome := crud.Delete(h.Env, r, res, id, string(permissions.FigureDelete))
	h.Renderer.Finish(w, r, outcome)
}

// SetMainImage points the figure's headline slot at one of its own images.
func (h *FigureHandler) SetMainImage(w http.ResponseWriter, r *http.Request) {
	figureID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(w, r, "imageID")
	if !ok {
		return
	}

	figure, err := h.Figures.GetByID(figureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("failed to load figure %d: %v", figureID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !h.Decider.Decide(CurrentUser(r), permissions.FigureEdit, figure) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if !h.Sessions.Verify(r, "figure.main_image", imageID) {
		h.Sessions.AddFlash(w, r, "error", "Invalid security token, the main image was not changed")
		http.Redirect(w, r, "/figures/"+figure.Slug, http.StatusSeeOther)
		return
	}
	// the main image must belong to the figure's own gallery
	if !figure.OwnsImage(imageID) {
		h.Sessions.AddFlash(w, r, "error", "That image does not belong to this figure")
		http.Redirect(w, r, "/figures/"+figure.Slug, http.StatusSeeOther)
		return
	}

	if err := h.Figures.SetMainImage(figure.ID, &imageID); err != nil {
		log.Printf("failed to set main image %d on figure %d: %v", imageID, figure.ID, err)
		h.Sessions.AddFlash(w, r, "error", "The main image could not be changed")
	} else {
		h.Sessions.AddFlash(w, r, "success", "Main image updated")
	}
	http.Redirect(w, r, "/figures/"+figure.Slug, http.StatusSeeOther)
}

func (h *FigureHandler) knownGroups() []string {
	groups, err := database.ListGroups(h.CatalogDB)
	if err != nil {
		log.Printf("group listing failed: %v", err)
		return nil
	}
	return groups
}

// parseID pulls a numeric id out of the route, writing a 404 on garbage.
func parseID(w http.ResponseWriter, r *http.Request, param string) (uint, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return uint(id), true
}
