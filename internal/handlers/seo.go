package handlers

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"
)

func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	lines := []string{
		"User-agent: *",
		"Allow: /",
		"Disallow: /admin/",
		"Sitemap: " + h.absURL(r, "/sitemap.xml"),
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strings.Join(lines, "\n")))
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func lastmod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// Sitemap lists the static pages, every published post and every project.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	set := urlset{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range []string{"/", "/blog/", "/resume/", "/projects/"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.absURL(r, p), ChangeFreq: "weekly", Priority: 0.7})
	}

	for page := 1; ; page++ {
		posts, total, err := h.store.Posts.Published(ctx, page, 500)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		for _, p := range posts {
			set.URLs = append(set.URLs, sitemapURL{
				Loc: h.absURL(r, p.URL()), LastMod: lastmod(p.UpdatedAt), ChangeFreq: "monthly", Priority: 0.8,
			})
		}
		if page*500 >= total {
			break
		}
	}

	projects, err := h.store.Projects.List(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, p := range projects {
		set.URLs = append(set.URLs, sitemapURL{
			Loc: h.absURL(r, p.URL()), LastMod: lastmod(p.UpdatedAt), ChangeFreq: "monthly", Priority: 0.7,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	w.Write(out)
}
