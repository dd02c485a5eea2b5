package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/escola/internal/app/controllers"
	"github.com/yigit/escola/internal/app/repositories/repotest"
	"github.com/yigit/escola/internal/app/routes"
	"github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/middleware"
	"github.com/yigit/escola/internal/pkg/auth"
	"github.com/yigit/escola/internal/pkg/session"
	"github.com/yigit/escola/internal/web"
)

const uploadLimit = 1 << 20

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// client drives the router like a browser: it keeps cookies and never follows redirects
type client struct {
	t      *testing.T
	router *gin.Engine
	jar    *cookiejar.Jar
	store  *repotest.Store
	ping   error
}

var baseURL = &url.URL{Scheme: "http", Host: "example.com", Path: "/"}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	nop := zerolog.Nop()
	store := repotest.NewStore()
	accounts := repotest.AccountRepo{Store: store}
	students := repotest.StudentRepo{Store: store}
	pets := repotest.PetRepo{Store: store}

	authService := services.NewAuthService(accounts, &auth.Hasher{Cost: bcrypt.MinCost}, nop)
	studentService := services.NewStudentService(students, pets, nil, nop)
	petService := services.NewPetService(pets, students, nop)
	dashboardService := services.NewDashboardService(students, pets, repotest.StatsRepo{Store: store})
	reportService := services.NewReportService(students, pets)

	_, _, err := authService.CreateAdmin(context.Background(), "admin", "admin@escola.com", "Administrador do Sistema", "admin123")
	require.NoError(t, err)

	sessions, err := session.NewManager(session.Config{
		Secret:      "test-secret-test-secret-test-sec",
		CookieName:  "test_session",
		Lifetime:    2 * time.Hour,
		RememberFor: 24 * time.Hour,
		HTTPOnly:    true,
	})
	require.NoError(t, err)

	templates, err := web.Templates()
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := &client{t: t, jar: jar, store: store}

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(middleware.BodyLimit(uploadLimit, sessions, nop))
	routes.SetupRouter(router,
		web.Static(),
		controllers.NewHealthController(pingFunc(func(context.Context) error { return c.ping })),
		controllers.NewAuthController(authService, sessions, nop),
		controllers.NewDashboardController(dashboardService, sessions, nop),
		controllers.NewStudentController(studentService, sessions, uploadLimit, nop),
		controllers.NewPetController(petService, studentService, sessions, nop),
		controllers.NewReportController(reportService, dashboardService, studentService, sessions, nop),
		middleware.NewAuthMiddleware(sessions, authService, nop),
	)
	c.router = router
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.jar.Cookies(baseURL) {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	c.jar.SetCookies(baseURL, rec.Result().Cookies())
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(path string, fields map[string]string, fileField, filename string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(c.t, err)
		_, err = part.Write(data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *client) login() {
	c.t.Helper()
	rec := c.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	require.Equal(c.t, http.StatusFound, rec.Code)
	require.Equal(c.t, "/dashboard", rec.Header().Get("Location"))
}

func (c *client) createStudent(code, name string) {
	c.t.Helper()
	rec := c.postForm("/students/new", url.Values{"matricula": {code}, "nome": {name}, "curso": {"Engenharia"}, "idade": {"20"}, "sexo": {"M"}})
	require.Equal(c.t, http.StatusFound, rec.Code)
	require.Equal(c.t, "/students", rec.Header().Get("Location"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func onlyStudentID(t *testing.T, store *repotest.Store) int64 {
	t.Helper()
	require.Len(t, store.Students, 1)
	for id := range store.Students {
		return id
	}
	return 0
}

func TestGateRedirectsAnonymousRequests(t *testing.T) {
	c := newClient(t)

	rec := c.get("/students?page=2")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login?next="+url.QueryEscape("/students?page=2"), rec.Header().Get("Location"))

	page := c.get("/auth/login?next=%2Fstudents")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Por favor, faça login para acessar esta página.")
}

func TestPublicRoutes(t *testing.T) {
	c := newClient(t)

	t.Run("static", func(t *testing.T) {
		rec := c.get(controllers.NoPhotoPath)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health", func(t *testing.T) {
		rec := c.get("/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

		c.ping = errors.New("connection refused")
		rec = c.get("/health")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		c.ping = nil
	})

	t.Run("register", func(t *testing.T) {
		rec := c.postForm("/auth/register", url.Values{
			"username":         {"maria"},
			"email":            {"maria@escola.com"},
			"password":         {"segredo1"},
			"password_confirm": {"segredo1"},
		})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
		assert.Contains(t, c.get(middleware.LoginPath).Body.String(), "Conta criada com sucesso! Faça login.")
	})
}

func TestLogin(t *testing.T) {
	t.Run("returns to next", func(t *testing.T) {
		c := newClient(t)
		rec := c.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"admin123"}, "next": {"/pets"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/pets", rec.Header().Get("Location"))

		page := c.get("/pets")
		assert.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Bem-vindo, Administrador do Sistema!")
	})

	t.Run("ignores external next", func(t *testing.T) {
		c := newClient(t)
		rec := c.postForm("/auth/login", url.Values{"username": {"admin"}, "password": {"admin123"}, "next": {"//evil.example"}})
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("wrong password", func(t *testing.T) {
		c := newClient(t)
		rec := c.postForm("/auth/login?next=%2Fpets", url.Values{"username": {"admin"}, "password": {"nope"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login?next=%2Fpets", rec.Header().Get("Location"))
		assert.Contains(t, c.get("/auth/login").Body.String(), "Usuário ou senha inválidos.")
		assert.Equal(t, http.StatusFound, c.get("/dashboard").Code)
	})

	t.Run("guest pages redirect when logged in", func(t *testing.T) {
		c := newClient(t)
		c.login()
		rec := c.get("/auth/login")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("logout", func(t *testing.T) {
		c := newClient(t)
		c.login()
		require.Equal(t, http.StatusOK, c.get("/dashboard").Code)

		rec := c.get("/auth/logout")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
		assert.Equal(t, http.StatusFound, c.get("/dashboard").Code)
	})
}

func TestChangePassword(t *testing.T) {
	c := newClient(t)
	c.login()

	rec := c.postForm("/auth/password", url.Values{
		"current_password": {"admin123"},
		"new_password":     {"nova-senha"},
		"password_confirm": {"nova-senha"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Contains(t, c.get("/dashboard").Body.String(), "Senha alterada com sucesso!")
}

func TestStudentPages(t *testing.T) {
	c := newClient(t)
	c.login()

	c.createStudent("2024001", "João Silva")
	id := onlyStudentID(t, c.store)
	assert.Contains(t, c.get("/students").Body.String(), "Aluno João Silva cadastrado com sucesso!")

	t.Run("duplicate enrollment goes back to the form", func(t *testing.T) {
		rec := c.postForm("/students/new", url.Values{"matricula": {"2024001"}, "nome": {"Outro"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/students/new", rec.Header().Get("Location"))
		assert.Contains(t, c.get("/students/new").Body.String(), "Matrícula já cadastrada.")
		assert.Len(t, c.store.Students, 1)
	})

	t.Run("detail and edit", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, c.get("/students/"+itoa(id)).Code)
		assert.Equal(t, http.StatusOK, c.get("/students/"+itoa(id)+"/edit").Code)

		rec := c.postForm("/students/"+itoa(id)+"/edit", url.Values{"matricula": {"2024001"}, "nome": {"João S."}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "João S.", c.store.Students[id].Name)
	})

	t.Run("missing student", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, c.get("/students/999").Code)
		assert.Equal(t, http.StatusNotFound, c.get("/students/abc").Code)
	})

	t.Run("photo placeholder", func(t *testing.T) {
		rec := c.get("/students/" + itoa(id) + "/photo")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, controllers.NoPhotoPath, rec.Header().Get("Location"))
	})

	t.Run("search", func(t *testing.T) {
		body := c.get("/students?search=Jo%C3%A3o").Body.String()
		assert.Contains(t, body, "João S.")
	})

	t.Run("export", func(t *testing.T) {
		rec := c.get("/students/export.json")
		assert.Equal(t, http.StatusOK, rec.Code)

		var exported []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
		require.Len(t, exported, 1)
		assert.Equal(t, "2024001", exported[0]["matricula"])
		assert.Contains(t, exported[0], "foto_filename")
	})

	t.Run("delete", func(t *testing.T) {
		rec := c.postForm("/students/"+itoa(id)+"/delete", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/students", rec.Header().Get("Location"))
		assert.Empty(t, c.store.Students)
	})
}

func TestStudentPhotoUpload(t *testing.T) {
	c := newClient(t)
	c.login()

	png := []byte("\x89PNG\r\n\x1a\nfake")
	rec := c.postMultipart("/students/new",
		map[string]string{"matricula": "2024002", "nome": "Maria Santos"},
		"foto", "maria.png", png)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/students", rec.Header().Get("Location"))

	photo := c.get("/students/" + itoa(onlyStudentID(t, c.store)) + "/photo")
	assert.Equal(t, http.StatusOK, photo.Code)
	assert.Equal(t, png, photo.Body.Bytes())
	assert.Contains(t, photo.Header().Get("Content-Disposition"), "inline")
}

func TestBodyLimit(t *testing.T) {
	c := newClient(t)
	c.login()

	rec := c.postMultipart("/students/new",
		map[string]string{"matricula": "2024003", "nome": "Pedro"},
		"foto", "big.png", bytes.Repeat([]byte{'x'}, uploadLimit+1))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/students/new", rec.Header().Get("Location"))
	assert.Contains(t, c.get("/students/new").Body.String(), middleware.TooLargeMessage(uploadLimit))
	assert.Empty(t, c.store.Students)
}

func TestPetPages(t *testing.T) {
	c := newClient(t)
	c.login()
	c.createStudent("2024001", "João Silva")
	ownerID := onlyStudentID(t, c.store)

	rec := c.postForm("/pets/new", url.Values{"apelido": {"Rex"}, "raca": {"Labrador"}, "data_nascimento": {"2020-05-15"}, "aluno_id": {itoa(ownerID)}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/pets", rec.Header().Get("Location"))
	assert.Contains(t, c.get("/pets").Body.String(), "Pet Rex cadastrado com sucesso!")

	t.Run("invalid date", func(t *testing.T) {
		rec := c.postForm("/pets/new", url.Values{"apelido": {"Bob"}, "data_nascimento": {"2020-13-45"}, "aluno_id": {itoa(ownerID)}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/pets/new", rec.Header().Get("Location"))
		assert.Len(t, c.store.Pets, 1)
	})

	t.Run("by owner", func(t *testing.T) {
		var pets []map[string]interface{}
		require.NoError(t, json.Unmarshal(c.get("/pets/by-owner/"+itoa(ownerID)).Body.Bytes(), &pets))
		require.Len(t, pets, 1)
		assert.Equal(t, "Rex", pets[0]["apelido"])
		assert.Equal(t, "15/05/2020", pets[0]["data_nascimento"])

		empty := c.get("/pets/by-owner/abc")
		assert.Equal(t, http.StatusOK, empty.Code)
		assert.JSONEq(t, `[]`, empty.Body.String())
	})

	t.Run("export", func(t *testing.T) {
		var pets []map[string]interface{}
		require.NoError(t, json.Unmarshal(c.get("/pets/export.json").Body.Bytes(), &pets))
		assert.Len(t, pets, 1)
	})
}

func TestReports(t *testing.T) {
	c := newClient(t)
	c.login()
	c.createStudent("2024001", "João Silva")

	t.Run("pdf", func(t *testing.T) {
		rec := c.get("/reports/students.pdf")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Regexp(t, `^attachment; filename="relatorio_alunos_\d{8}_\d{6}\.pdf"$`, rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("pages", func(t *testing.T) {
		for _, path := range []string{"/reports", "/reports/statistics", "/reports/master-detail", "/reports/master-detail?studentId=abc", "/", "/dashboard"} {
			rec := c.get(path)
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
		body, err := io.ReadAll(c.get("/reports/master-detail?studentId=" + itoa(onlyStudentID(t, c.store))).Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "João Silva")
	})

	t.Run("unknown student", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, c.get("/reports/master-detail?studentId=999").Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	c := newClient(t)
	assert.Equal(t, http.StatusNotFound, c.get("/nothing/here").Code)
}
