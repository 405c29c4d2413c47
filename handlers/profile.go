package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/trickdeck/trickdeckbackend/media"
	"github.com/trickdeck/trickdeckbackend/repository"
)

// ProfileHandler serves the account page and avatar upload.
type ProfileHandler struct {
	Users     repository.UserRepository
	Processor *media.Processor
	Store     media.Store
	Sessions  *SessionManager
	Renderer  *Renderer
	MaxUpload int64
}

type profileView struct {
	Errors []string
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, "profile", "Your profile", profileView{})
}

// UploadAvatar replaces the current avatar, removing the previous file.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	maxBytes := h.MaxUpload
	if maxBytes <= 0 {
		maxBytes = maxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		h.Renderer.Render(w, r, "profile", "Your profile", profileView{
			Errors: []string{"The upload is too large or malformed"},
		})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.Renderer.Render(w, r, "profile", "Your profile", profileView{
			Errors: []string{"Choose a file to upload"},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("failed to read avatar upload for user %d: %v", user.ID, err)
		h.Renderer.Render(w, r, "profile", "Your profile", profileView{
			Errors: []string{"The upload could not be read"},
		})
		return
	}

	relPath, err := h.Processor.ProcessAvatar(data)
	if err != nil {
		h.Renderer.Render(w, r, "profile", "Your profile", profileView{
			Errors: []string{"That file does not look like a supported image"},
		})
		return
	}

	previous := user.AvatarURL
	url := "/media/" + relPath
	user.AvatarURL = &url
	if err := h.Users.Update(user); err != nil {
		log.Printf("failed to save avatar for user %d: %v", user.ID, err)
		if derr := h.Store.Delete(relPath); derr != nil {
			log.Printf("failed to remove orphaned avatar %s: %v", relPath, derr)
		}
		h.Renderer.Render(w, r, "profile", "Your profile", profileView{
			Errors: []string{"The avatar could not be saved"},
		})
		return
	}

	if previous != nil {
		if err := h.Store.Delete(relMediaPath(*previous)); err != nil {
			log.Printf("failed to remove previous avatar for user %d: %v", user.ID, err)
		}
	}

	h.Sessions.AddFlash(w, r, "success", "Avatar updated")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
