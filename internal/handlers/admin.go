package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

const maxUpload = 16 << 20

func (h *Handler) adminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/login", h.Login)
	mux.HandleFunc("POST /admin/logout", h.Logout)

	api := func(pattern string, fn http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" /admin/api"+path, h.RequireAuth(fn))
	}
	api("GET /profiles", h.listProfiles)
	api("POST /profiles", h.createProfile)
	api("GET /profiles/{id}", h.getProfile)
	api("PUT /profiles/{id}", h.updateProfile) // partial: omitted fields are kept
	api("DELETE /profiles/{id}", h.deleteProfile)
	api("POST /profiles/{id}/activate", h.setProfileActive(true))
	api("POST /profiles/{id}/deactivate", h.setProfileActive(false))
	api("POST /profiles/{id}/{kind}", h.addResumeItem)
	api("DELETE /profiles/{id}/{kind}/{item}", h.deleteResumeItem)

	api("GET /posts", h.listPosts)
	api("POST /posts", h.savePost)
	api("GET /posts/{id}", h.getPost)
	api("PUT /posts/{id}", h.savePost)
	api("DELETE /posts/{id}", h.deletePost)

	api("GET /categories", h.listCategories)
	api("POST /categories", h.createCategory)
	api("GET /tags", h.listTags)
	api("POST /tags", h.createTag)

	api("GET /comments/pending", h.pendingComments)
	api("POST /comments/{id}/approve", h.moderateComment(true))
	api("POST /comments/{id}/unapprove", h.moderateComment(false))
	api("DELETE /comments/{id}", h.deleteComment)

	api("GET /projects", h.listProjects)
	api("POST /projects", h.saveProject)
	api("PUT /projects/{id}", h.saveProject)
	api("DELETE /projects/{id}", h.deleteProject)

	api("POST /media", h.uploadMedia)
}

// apiError maps store errors to status codes.
func apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalid), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrBadCredentials):
		status = http.StatusUnauthorized
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: [Admin] %s %s: %v", r.Method, r.URL.Path, err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

// date parses YYYY-MM-DD; the empty string is nil.
func date(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", errBadRequest, *s)
	}
	return &t, nil
}

// -------- Session

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decode(r, &c); err != nil {
			apiError(w, r, err)
			return
		}
	} else {
		c.Email, c.Password = r.FormValue("email"), r.FormValue("password")
	}

	u, err := h.store.Users.Authenticate(r.Context(), strings.TrimSpace(c.Email), c.Password)
	if err != nil {
		apiError(w, r, err)
		return
	}
	if err := h.sessions.Create(r.Context(), w, u.ID); err != nil {
		apiError(w, r, err)
		return
	}
	log.Printf("INFO: [Admin] %s logged in from %s", u.Username, clientIP(r))
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// -------- Profiles

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Profiles.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// createProfile stores a new profile. Profiles are active unless the body
// says "is_active": false.
func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	p := models.Profile{IsActive: true}
	if err := decode(r, &p); err != nil {
		apiError(w, r, err)
		return
	}
	p.ID = 0
	if err := h.store.Profiles.Create(r.Context(), &p); err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}
	res, err := h.store.Profiles.Resume(r.Context(), id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// updateProfile merges the body into the stored profile: fields left out
// of the JSON keep their current values.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}
	p, err := h.store.Profiles.Get(r.Context(), id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	if err := decode(r, p); err != nil {
		apiError(w, r, err)
		return
	}
	p.ID = id
	if err := h.store.Profiles.Update(r.Context(), p); err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.store.Profiles.Delete(r.Context(), id)
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setProfileActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err == nil {
			err = h.store.Profiles.SetActive(r.Context(), id, active)
		}
		if err != nil {
			apiError(w, r, err)
			return
		}
		p, err := h.store.Profiles.Get(r.Context(), id)
		if err != nil {
			apiError(w, r, err)
			return
		}
		log.Printf("INFO: [Admin] Profile %d active=%t", id, active)
		writeJSON(w, http.StatusOK, p)
	}
}

type experienceInput struct {
	Position           string  `json:"position"`
	Company            string  `json:"company"`
	Location           string  `json:"location"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
	Description        string  `json:"description"`
	CompanyDescription string  `json:"company_description"`
	Order              int     `json:"order"`
}

type certificationInput struct {
	Name          string  `json:"name"`
	Provider      string  `json:"provider"`
	DateObtained  *string `json:"date_obtained"`
	CredentialURL string  `json:"credential_url"`
	Order         int     `json:"order"`
}

func (h *Handler) addResumeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, err := pathID(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}

	var item any
	switch r.PathValue("kind") {
	case "experiences":
		var in experienceInput
		if err = decode(r, &in); err != nil {
			break
		}
		e := &models.Experience{ProfileID: profileID, Position: in.Position, Company: in.Company, Location: in.Location,
			Description: in.Description, CompanyDescription: in.CompanyDescription, Order: in.Order}
		var start *time.Time
		if start, err = date(in.StartDate); err != nil {
			break
		}
		if start != nil {
			e.StartDate = *start
		}
		if e.EndDate, err = date(in.EndDate); err != nil {
			break
		}
		item, err = e, h.store.Profiles.AddExperience(ctx, e)
	case "skills":
		sk := &models.Skill{}
		if err = decode(r, sk); err == nil {
			sk.ProfileID = profileID
			item, err = sk, h.store.Profiles.AddSkill(ctx, sk)
		}
	case "certifications":
		var in certificationInput
		if err = decode(r, &in); err != nil {
			break
		}
		c := &models.Certification{ProfileID: profileID, Name: in.Name, Provider: in.Provider,
			CredentialURL: in.CredentialURL, Order: in.Order}
		if c.DateObtained, err = date(in.DateObtained); err != nil {
			break
		}
		item, err = c, h.store.Profiles.AddCertification(ctx, c)
	case "achievements":
		a := &models.Achievement{}
		if err = decode(r, a); err == nil {
			a.ProfileID = profileID
			item, err = a, h.store.Profiles.AddAchievement(ctx, a)
		}
	default:
		err = fmt.Errorf("%w: unknown resume section %q", errBadRequest, r.PathValue("kind"))
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) deleteResumeItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item")
	if err == nil {
		err = h.store.Profiles.DeleteChild(r.Context(), r.PathValue("kind"), id)
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -------- Posts and taxonomy

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Posts.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiError(w, r, err)
		return
	}
	p, err := h.store.Posts.Get(r.Context(), id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// savePost creates (POST) or replaces (PUT) a post authored by the
// logged-in admin.
func (h *Handler) savePost(w http.ResponseWriter, r *http.Request) {
	var p models.Post
	if err := decode(r, &p); err != nil {
		apiError(w, r, err)
		return
	}
	p.ID = 0
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, err := pathID(r, "id")
		if err != nil {
			apiError(w, r, err)
			return
		}
		p.ID, status = id, http.StatusOK
	}
	uid, _ := h.sessions.CurrentUserID(r)
	p.AuthorID = uid
	p.PublishedAt = nil

	if err := h.store.Posts.Save(r.Context(), &p); err != nil {
		apiError(w, r, err)
		return
	}
	saved, err := h.store.Posts.Get(r.Context(), p.ID)
	if err != nil {
		apiError(w, r, err)
		return
	}
	log.Printf("INFO: [Admin] Saved post %d (%s)", saved.ID, saved.Status)
	writeJSON(w, status, saved)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.store.Posts.Delete(r.Context(), id)
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Taxonomy.Categories(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decode(r, &c); err != nil {
		apiError(w, r, err)
		return
	}
	if err := h.store.Taxonomy.CreateCategory(r.Context(), &c); err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Taxonomy.Tags(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	var t models.Tag
	if err := decode(r, &t); err != nil {
		apiError(w, r, err)
		return
	}
	if err := h.store.Taxonomy.CreateTag(r.Context(), &t); err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// -------- Comments

func (h *Handler) pendingComments(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Comments.Pending(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) moderateComment(approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err == nil {
			err = h.store.Comments.SetApproved(r.Context(), id, approved)
		}
		if err != nil {
			apiError(w, r, err)
			return
		}
		log.Printf("INFO: [Admin] Comment %d approved=%t", id, approved)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.store.Comments.Delete(r.Context(), id)
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -------- Projects and media

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Projects.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) saveProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := decode(r, &p); err != nil {
		apiError(w, r, err)
		return
	}
	p.ID = 0
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, err := pathID(r, "id")
		if err != nil {
			apiError(w, r, err)
			return
		}
		p.ID, status = id, http.StatusOK
	}
	if err := h.store.Projects.Save(r.Context(), &p); err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, status, p)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = h.store.Projects.Delete(r.Context(), id)
	}
	if err != nil {
		apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadPrefixes are the media folders uploads may target.
var uploadPrefixes = map[string]bool{
	"resume/photos": true,
	"blog/featured": true,
	"projects":      true,
	"uploads":       true,
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		apiError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	prefix := r.FormValue("prefix")
	if prefix == "" {
		prefix = "uploads"
	}
	if !uploadPrefixes[prefix] {
		apiError(w, r, fmt.Errorf("%w: unknown upload folder %q", errBadRequest, prefix))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		apiError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer f.Close()

	name, err := h.media.Save(prefix, hdr.Filename, f)
	if err != nil {
		apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name, "url": h.media.URL(name)})
}
