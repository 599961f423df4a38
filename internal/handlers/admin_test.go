package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// login creates an admin and returns its session cookie.
func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	f.author(t)
	rec := f.do(t, http.MethodPost, "/admin/login", strings.NewReader(`{"email":"admin@example.com","password":"s3cret!"}`),
		func(r *http.Request) { r.Header.Set("Content-Type", "application/json") })
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (f *fixture) api(t *testing.T, c *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, method, "/admin/api"+path, strings.NewReader(body), func(r *http.Request) {
		r.Header.Set("Content-Type", "application/json")
		if c != nil {
			r.AddCookie(c)
		}
	})
}

func TestAdminRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.api(t, nil, http.MethodGet, "/profiles", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	f.author(t)
	rec = f.do(t, http.MethodPost, "/admin/login", strings.NewReader("email=admin@example.com&password=wrong"),
		func(r *http.Request) { r.Header.Set("Content-Type", "application/x-www-form-urlencoded") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogout(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)
	require.Equal(t, http.StatusOK, f.api(t, c, http.MethodGet, "/profiles", "").Code)

	rec := f.do(t, http.MethodPost, "/admin/logout", nil, func(r *http.Request) { r.AddCookie(c) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, f.api(t, c, http.MethodGet, "/profiles", "").Code)
}

func TestAdminProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	var first, second models.Profile
	rec := f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"Jane Doe","title":"Engineer","email":"jane@example.com","is_active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	rec = f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"John Roe","title":"Designer","email":"john@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	rec = f.api(t, c, http.MethodPost, "/profiles/"+itoa(second.ID)+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Profile
	rec = f.api(t, c, http.MethodGet, "/profiles", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	active := 0
	for _, p := range list {
		if p.IsActive {
			active++
			assert.Equal(t, second.ID, p.ID)
		}
	}
	assert.Equal(t, 1, active)

	base := "/profiles/" + itoa(second.ID)
	rec = f.api(t, c, http.MethodPost, base+"/experiences",
		`{"position":"Lead","company":"Acme","start_date":"2021-02-01","description":"<ul><li>Shipped</li></ul>"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = f.api(t, c, http.MethodPost, base+"/experiences", `{"position":"Lead","company":"Acme","start_date":"Feb 2021"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, f.api(t, c, http.MethodPost, base+"/skills", `{"name":"Go","category":"Languages"}`).Code)
	assert.Equal(t, http.StatusConflict, f.api(t, c, http.MethodPost, base+"/skills", `{"name":"Go","category":"Languages"}`).Code)
	require.Equal(t, http.StatusCreated,
		f.api(t, c, http.MethodPost, base+"/certifications", `{"name":"CKA","provider":"CNCF","date_obtained":"2023-05-01"}`).Code)
	require.Equal(t, http.StatusCreated,
		f.api(t, c, http.MethodPost, base+"/achievements", `{"title":"Cut costs","description":"By half"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.api(t, c, http.MethodPost, base+"/hobbies", `{}`).Code)

	var res models.Resume
	rec = f.api(t, c, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Experiences, 1)
	require.Len(t, res.Skills, 1)
	require.Len(t, res.Certifications, 1)
	require.Len(t, res.Achievements, 1)

	rec = f.api(t, c, http.MethodDelete, base+"/skills/"+itoa(res.Skills[0].ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/resume/export/pdf/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=John_Roe_Resume.pdf", rec.Header().Get("Content-Disposition"))

	rec = f.api(t, c, http.MethodPost, base+"/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/resume/export/pdf/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, f.api(t, c, http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, f.api(t, c, http.MethodGet, base, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.api(t, c, http.MethodGet, "/profiles/abc", "").Code)
}

func TestAdminProfileDefaultsToActive(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	var solo models.Profile
	rec := f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"Solo Dev","title":"Engineer","email":"s@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &solo))
	assert.True(t, solo.IsActive)

	rec = f.do(t, http.MethodGet, "/resume/export/pdf/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=Solo_Dev_Resume.pdf", rec.Header().Get("Content-Disposition"))

	// an explicit false is kept and leaves the active profile alone
	var draft models.Profile
	rec = f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"Draft Dev","title":"Engineer","email":"d@example.com","is_active":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.False(t, draft.IsActive)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/resume/export/pdf/", nil).Code)
}

func TestAdminProfileUpdateKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	var p models.Profile
	rec := f.api(t, c, http.MethodPost, "/profiles",
		`{"full_name":"Jane Doe","title":"Engineer","email":"jane@example.com","photo":"resume/photos/jane.png"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))

	rec = f.api(t, c, http.MethodPut, "/profiles/"+itoa(p.ID), `{"title":"Staff Engineer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := f.store.Profiles.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", stored.Title)
	assert.Equal(t, "Jane Doe", stored.FullName)
	assert.Equal(t, "resume/photos/jane.png", stored.Photo)
	assert.True(t, stored.IsActive)

	rec = f.api(t, c, http.MethodPut, "/profiles/"+itoa(p.ID), `{"is_active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err = f.store.Profiles.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "resume/photos/jane.png", stored.Photo)

	assert.Equal(t, http.StatusNotFound, f.api(t, c, http.MethodPut, "/profiles/999", `{"title":"X"}`).Code)
}

func TestAdminRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)
	rec := f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"Jane","title":"Eng","email":"j@example.com","age":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.api(t, c, http.MethodPost, "/profiles", `{"full_name":"","title":"Eng","email":"j@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminPostPublishing(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	var post models.Post
	rec := f.api(t, c, http.MethodPost, "/posts", `{"title":"Draft Thoughts","content_markdown":"Some *words*","status":"draft"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/blog/draft-thoughts/", nil).Code)

	rec = f.api(t, c, http.MethodPut, "/posts/"+itoa(post.ID),
		`{"title":"Draft Thoughts","slug":"draft-thoughts","content_markdown":"Some *words*","status":"published"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.NotNil(t, post.PublishedAt)

	rec = f.do(t, http.MethodGet, "/blog/draft-thoughts/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>words</em>")

	assert.Equal(t, http.StatusBadRequest, f.api(t, c, http.MethodPost, "/posts", `{"title":"X","status":"scheduled"}`).Code)
	assert.Equal(t, http.StatusNoContent, f.api(t, c, http.MethodDelete, "/posts/"+itoa(post.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/blog/draft-thoughts/", nil).Code)
}

func TestAdminModeratesComments(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)
	live := f.post(t, 1, "Hello World", models.StatusPublished)

	rec := f.do(t, http.MethodPost, live.URL()+"comments",
		strings.NewReader("author_name=Reader&author_email=r@example.com&content=Great+read"),
		func(r *http.Request) { r.Header.Set("Content-Type", "application/x-www-form-urlencoded") })
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var pending []models.Comment
	rec = f.api(t, c, http.MethodGet, "/comments/pending", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	assert.Equal(t, http.StatusNoContent, f.api(t, c, http.MethodPost, "/comments/"+itoa(pending[0].ID)+"/approve", "").Code)
	assert.Contains(t, f.do(t, http.MethodGet, live.URL(), nil).Body.String(), "Great read")

	assert.Equal(t, http.StatusNoContent, f.api(t, c, http.MethodDelete, "/comments/"+itoa(pending[0].ID), "").Code)
	assert.NotContains(t, f.do(t, http.MethodGet, live.URL(), nil).Body.String(), "Great read")
}

func TestAdminTaxonomyAndProjects(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	require.Equal(t, http.StatusCreated, f.api(t, c, http.MethodPost, "/categories", `{"name":"Engineering"}`).Code)
	assert.Equal(t, http.StatusConflict, f.api(t, c, http.MethodPost, "/categories", `{"name":"Engineering"}`).Code)
	require.Equal(t, http.StatusCreated, f.api(t, c, http.MethodPost, "/tags", `{"name":"Go"}`).Code)

	var cats []models.Category
	require.NoError(t, json.Unmarshal(f.api(t, c, http.MethodGet, "/categories", "").Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "engineering", cats[0].Slug)

	var p models.Project
	rec := f.api(t, c, http.MethodPost, "/projects", `{"title":"Site Engine","description":"Builds sites","tags":[{"name":"Go"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/projects/site-engine/", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.api(t, c, http.MethodDelete, "/projects/"+itoa(p.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/projects/site-engine/", nil).Code)
}

func TestAdminMediaUpload(t *testing.T) {
	f := newFixture(t)
	c := f.login(t)

	upload := func(prefix string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("prefix", prefix))
		fw, err := mw.CreateFormFile("file", "Avatar.PNG")
		require.NoError(t, err)
		fw.Write([]byte("not really a png"))
		require.NoError(t, mw.Close())
		return f.do(t, http.MethodPost, "/admin/api/media", &body, func(r *http.Request) {
			r.Header.Set("Content-Type", mw.FormDataContentType())
			r.AddCookie(c)
		})
	}

	rec := upload("resume/photos")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, strings.HasPrefix(out["name"], "resume/photos/"))
	assert.True(t, strings.HasSuffix(out["name"], ".png"))
	assert.Equal(t, "/media/"+out["name"], out["url"])

	served := f.do(t, http.MethodGet, out["url"], nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "not really a png", served.Body.String())

	assert.Equal(t, http.StatusBadRequest, upload("../etc").Code)
}
