package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/resume"
	"portfolio/internal/store"
)

const postsPerPage = 10

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.page(r, "Home")

	res, err := h.store.Profiles.ActiveResume(ctx)
	switch {
	case err == nil:
		data["Profile"] = &res.Profile
		data["Experiences"] = res.Experiences
		data["Skills"] = res.Skills
		data["MetaDescription"] = res.Profile.DisplayName()
	case !errors.Is(err, store.ErrNotFound):
		h.fail(w, r, err)
		return
	}

	projects, err := h.store.Projects.Featured(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	posts, err := h.store.Posts.Recent(ctx, 3)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data["Projects"] = projects
	data["Posts"] = posts
	h.render(w, r, http.StatusOK, "home", data)
}

// requestedPage reads ?page=; junk means page 1.
func requestedPage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return n
}

// BlogList pages published posts. Out-of-range pages show the last page.
func (h *Handler) BlogList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := requestedPage(r)
	posts, total, err := h.store.Posts.Published(ctx, max(page, 1), postsPerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pages := max(1, (total+postsPerPage-1)/postsPerPage)
	if page < 1 || page > pages {
		page = pages
		if posts, _, err = h.store.Posts.Published(ctx, page, postsPerPage); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	pageURL := func(n int) string {
		if n == 1 {
			return h.absURL(r, r.URL.Path)
		}
		return h.absURL(r, fmt.Sprintf("%s?page=%d", r.URL.Path, n))
	}
	data := h.page(r, "Blog")
	data["Posts"] = posts
	data["Page"] = page
	data["Pages"] = pages
	data["Canonical"] = pageURL(page)
	if page > 1 {
		data["PrevURL"] = pageURL(page - 1)
	}
	if page < pages {
		data["NextURL"] = pageURL(page + 1)
	}
	h.render(w, r, http.StatusOK, "blog_list", data)
}

func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := h.store.Posts.PublishedBySlug(ctx, r.PathValue("slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	next, prev, err := h.store.Posts.Neighbours(ctx, post)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comments, err := h.store.Comments.Approved(ctx, post.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.page(r, post.MetaTitle)
	data["Post"] = post
	data["Next"] = next
	data["Previous"] = prev
	data["Comments"] = comments
	data["CommentPending"] = r.URL.Query().Get("comment") == "pending"
	data["MetaDescription"] = post.MetaDescription
	data["Canonical"] = h.absURL(r, post.URL())
	h.render(w, r, http.StatusOK, "post", data)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := h.store.Posts.PublishedBySlug(ctx, r.PathValue("slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c := &models.Comment{
		PostID:      post.ID,
		AuthorName:  strings.TrimSpace(r.FormValue("author_name")),
		AuthorEmail: strings.TrimSpace(r.FormValue("author_email")),
		AuthorURL:   strings.TrimSpace(r.FormValue("author_url")),
		Content:     strings.TrimSpace(r.FormValue("content")),
		IPAddress:   clientIP(r),
	}
	if err := h.store.Comments.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.fail(w, r, err)
		return
	}
	log.Printf("INFO: [Comments] New comment %d on %q awaiting moderation", c.ID, post.Slug)
	http.Redirect(w, r, post.URL()+"?comment=pending#comments", http.StatusSeeOther)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Resume")
	res, err := h.store.Profiles.ActiveResume(r.Context())
	switch {
	case err == nil:
		data["Resume"] = res
		data["SkillGroups"] = models.GroupSkills(res.Skills)
		data["Title"] = res.Profile.DisplayName()
	case !errors.Is(err, store.ErrNotFound):
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "resume", data)
}

// ExportPDF serves the active resume as a download. Every failure is a
// 404 with a short plain-text reason.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.exporter.Export(r.Context())
	if errors.Is(err, resume.ErrNoActiveProfile) {
		log.Println("WARN: [Resume] PDF export attempted with no active profile")
		http.Error(w, "No active resume profile found.", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("ERROR: [Resume] PDF generation failed: %v", err)
		http.Error(w, "Failed to generate PDF resume. Please try again later.", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.Projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.page(r, "Projects")
	data["Projects"] = projects
	h.render(w, r, http.StatusOK, "projects", data)
}

func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Projects.BySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.page(r, p.Title)
	data["Project"] = p
	h.render(w, r, http.StatusOK, "project", data)
}
