package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/models"
	"github.com/trickdeck/trickdeckbackend/permissions"
	"github.com/trickdeck/trickdeckbackend/repository"
	"github.com/trickdeck/trickdeckbackend/templates"
)

// figureRepoStub serves a fixed figure or a fixed error for every lookup.
type figureRepoStub struct {
	figure *models.Figure
	err    error
}

func (s *figureRepoStub) get() (*models.Figure, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.figure, nil
}

func (s *figureRepoStub) Create(*models.Figure) error             { return nil }
func (s *figureRepoStub) GetByID(uint) (*models.Figure, error)    { return s.get() }
func (s *figureRepoStub) GetBySlug(string) (*models.Figure, error) { return s.get() }
func (s *figureRepoStub) Update(*models.Figure) error             { return nil }
func (s *figureRepoStub) Delete(uint) error                       { return nil }
func (s *figureRepoStub) SetMainImage(uint, *uint) error          { return nil }
func (s *figureRepoStub) ClearMainImage(uint, uint) error         { return nil }

var _ repository.FigureRepository = (*figureRepoStub)(nil)

type commentRepoStub struct {
	created []*models.Comment
}

func (s *commentRepoStub) Create(c *models.Comment) error {
	s.created = append(s.created, c)
	return nil
}
func (s *commentRepoStub) GetByID(uint) (*models.Comment, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *commentRepoStub) ListByFigure(uint) ([]models.Comment, error) { return nil, nil }
func (s *commentRepoStub) CountByFigure(uint) (int64, error)           { return 0, nil }
func (s *commentRepoStub) Delete(uint) error                           { return nil }

var _ repository.CommentRepository = (*commentRepoStub)(nil)

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
}

func TestEditMissingFigureLeavesTheEditURL(t *testing.T) {
	set, err := templates.Load()
	require.NoError(t, err)
	sm := NewSessionManager("test-secret", false)

	h := &FigureHandler{
		Figures:  &figureRepoStub{err: gorm.ErrRecordNotFound},
		Sessions: sm,
		Renderer: NewRenderer(set, sm),
		Validate: NewValidator(),
		Decider:  permissions.NewDecider(),
	}

	r := withRouteParam(httptest.NewRequest(http.MethodGet, "/figures/ghost/edit", nil), "slug", "ghost")
	w := httptest.NewRecorder()
	h.Edit(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.Equal(t, "/", location)
	// redirecting back onto the edit URL would loop forever
	require.NotEqual(t, r.URL.Path, location)
}

func TestCommentLengthCountsCharactersNotBytes(t *testing.T) {
	figure := &models.Figure{ID: 10, Slug: "cork-720", AuthorID: 2}
	comments := &commentRepoStub{}
	sm := NewSessionManager("test-secret", false)

	h := &CommentHandler{
		Comments: comments,
		Figures:  &figureRepoStub{figure: figure},
		Sessions: sm,
	}

	post := func(content string) *httptest.ResponseRecorder {
		form := url.Values{"content": {content}}
		r := httptest.NewRequest(http.MethodPost, "/figures/cork-720/comments", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r = withRouteParam(r, "slug", "cork-720")
		r = withUser(r, &models.User{ID: 1})
		w := httptest.NewRecorder()
		h.Add(w, r)
		return w
	}

	// 200 two-byte characters stay within the 255-character limit
	w := post(strings.Repeat("é", 200))
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, comments.created, 1)

	post(strings.Repeat("é", 256))
	require.Len(t, comments.created, 1, "over-length comment must not persist")
}

func TestVideoFigureLookupDistinguishesMissFromFailure(t *testing.T) {
	sm := NewSessionManager("test-secret", false)
	handlerWith := func(err error) *VideoHandler {
		return &VideoHandler{
			Figures:  &figureRepoStub{err: err},
			Sessions: sm,
			Decider:  permissions.NewDecider(),
		}
	}

	newRequest := func() *http.Request {
		return withRouteParam(httptest.NewRequest(http.MethodGet, "/figures/ghost/videos/new", nil), "slug", "ghost")
	}

	w := httptest.NewRecorder()
	handlerWith(gorm.ErrRecordNotFound).Add(w, newRequest())
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handlerWith(errors.New("connection reset")).Add(w, newRequest())
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
