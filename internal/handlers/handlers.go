package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/media"
	"portfolio/internal/models"
	"portfolio/internal/resume"
	"portfolio/internal/store"
	"portfolio/web"
)

type Handler struct {
	store    *store.Store
	sessions *auth.Manager
	tpls     *template.Template
	exporter *resume.Exporter
	media    *media.Storage
	cfg      *config.Config
	mux      *http.ServeMux
}

func New(st *store.Store, sessions *auth.Manager, exporter *resume.Exporter, m *media.Storage, cfg *config.Config) *Handler {
	h := &Handler{store: st, sessions: sessions, exporter: exporter, media: m, cfg: cfg}
	h.tpls = template.Must(template.New("").Funcs(h.funcs()).ParseFS(web.FS, "templates/*.html"))
	return h
}

func (h *Handler) funcs() template.FuncMap {
	return template.FuncMap{
		"safe":  func(s string) template.HTML { return template.HTML(content.Sanitize(s)) },
		"media": h.media.URL,
		"join":  strings.Join,
		"date": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format("January 2, 2006")
			case *time.Time:
				if t != nil {
					return t.Format("January 2, 2006")
				}
			}
			return ""
		},
		"duration": func(e models.Experience) string { return e.Duration(time.Now()) },
		"card": func(p models.Post) string {
			return h.media.Variant(p.FeaturedImage, media.Card, p.FeaturedImageFocusX, p.FeaturedImageFocusY)
		},
		"hero": func(p *models.Post) string {
			return h.media.Variant(p.FeaturedImage, media.Hero, p.FeaturedImageFocusX, p.FeaturedImageFocusY)
		},
	}
}

// Routes registers every public and admin route and wraps the mux with
// the middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.mux = mux

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /blog/{$}", h.BlogList)
	mux.HandleFunc("GET /blog/{slug}/{$}", h.PostDetail)
	mux.HandleFunc("POST /blog/{slug}/comments", h.CreateComment)
	mux.HandleFunc("GET /resume/{$}", h.Resume)
	mux.HandleFunc("GET /resume/export/pdf/{$}", h.ExportPDF)
	mux.HandleFunc("GET /projects/{$}", h.Projects)
	mux.HandleFunc("GET /projects/{slug}/{$}", h.ProjectDetail)
	mux.HandleFunc("GET /health/{$}", h.Health)
	mux.HandleFunc("POST /toggle-theme", h.ToggleTheme)

	mux.HandleFunc("GET /robots.txt", h.Robots)
	mux.HandleFunc("GET /sitemap.xml", h.Sitemap)
	for _, p := range []string{"/robots", "/robots/{$}", "/robots.txt/{$}"} {
		mux.Handle("GET "+p, http.RedirectHandler("/robots.txt", http.StatusMovedPermanently))
	}
	for _, p := range []string{"/sitemap", "/sitemap/{$}", "/sitemap.xml/{$}"} {
		mux.Handle("GET "+p, http.RedirectHandler("/sitemap.xml", http.StatusMovedPermanently))
	}

	static, _ := fs.Sub(web.FS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", h.files(http.FileServerFS(static))))
	mux.Handle("GET "+h.cfg.Media.URL, http.StripPrefix(h.cfg.Media.URL, h.files(http.FileServerFS(h.media))))

	h.adminRoutes(mux)
	mux.HandleFunc("/", h.NotFound)

	var next http.Handler = mux
	next = Compress(next)
	next = CanonicalHost(next, h.cfg.Server.CanonicalHost, h.cfg.Server.Debug)
	next = WithRecover(next, h.ServerError)
	return Logger(next)
}

// files hides directory listings.
func (h *Handler) files(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			h.render(w, r, http.StatusNotFound, "notfound", h.page(r, "Not Found"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.CurrentUserID(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (h *Handler) getTheme(r *http.Request) string {
	if c, err := r.Cookie("theme"); err == nil && (c.Value == "dark" || c.Value == "light") {
		return c.Value
	}
	return "light"
}

func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	newv := "dark"
	if h.getTheme(r) == "dark" {
		newv = "light"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    newv,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
}

// localReferer returns the referring path on this site, or "/".
func localReferer(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	i := strings.Index(ref, "://")
	if i < 0 {
		return "/"
	}
	rest := ref[i+3:]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 || !strings.EqualFold(rest[:slash], r.Host) {
		return "/"
	}
	return rest[slash:]
}

// page is the data every template gets.
func (h *Handler) page(r *http.Request, title string) map[string]any {
	return map[string]any{
		"Title":     title,
		"SiteName":  h.cfg.Site.Name,
		"Theme":     h.getTheme(r),
		"Canonical": h.absURL(r, r.URL.Path),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	var buf bytes.Buffer
	if err := h.tpls.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("ERROR: [Handlers] render %s for %s: %v", name, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// absURL builds an absolute URL from the configured base URL, or from the
// request when none is set.
func (h *Handler) absURL(r *http.Request, path string) string {
	if base := h.cfg.Site.BaseURL; base != "" {
		return base + path
	}
	return scheme(r) + "://" + r.Host + path
}

func scheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NotFound renders the 404 page. Paths that only lack a trailing slash are
// redirected to the slashed form.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if h.mux != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) && !strings.HasSuffix(r.URL.Path, "/") {
		r2 := r.Clone(r.Context())
		r2.URL.Path += "/"
		if _, pattern := h.mux.Handler(r2); pattern != "" && pattern != "/" {
			target := r2.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
	}
	h.render(w, r, http.StatusNotFound, "notfound", h.page(r, "Not Found"))
}

func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "error", h.page(r, "Server Error"))
}

// fail maps store errors onto pages: not-found to the 404 page, anything
// else to the 500 page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	log.Printf("ERROR: [Handlers] %s %s: %v", r.Method, r.URL.Path, err)
	h.ServerError(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN: [Handlers] encode response: %v", err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
