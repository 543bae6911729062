package httpserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authmw "github.com/sharkweb/boardsite/internal/middleware/auth"
	"github.com/sharkweb/boardsite/internal/models"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/service"
	"github.com/sharkweb/boardsite/internal/token"
)

const e2eTTL = time.Hour

type testEnv struct {
	t     *testing.T
	e     *echo.Echo
	codec *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Board{}))

	secret := base64.StdEncoding.EncodeToString([]byte("e2e-test-secret"))
	codec, err := token.NewCodec(secret, e2eTTL)
	require.NoError(t, err)

	gormRepo := &repo.GormRepo{DB: db}

	e := echo.New()
	Register(e, &Deps{
		Auth:          &AuthHTTP{Svc: &service.AuthService{Repo: gormRepo, Codec: codec}},
		Board:         &BoardHTTP{Svc: &service.BoardService{Repo: gormRepo}},
		Authenticator: authmw.NewAuthenticator(codec, gormRepo),
		AllowedOrigin: "http://localhost:3000",
	})

	return &testEnv{t: t, e: e, codec: codec}
}

func (env *testEnv) do(method, path, bearer string, payload any) *httptest.ResponseRecorder {
	env.t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) registerUser(email, password, nickname string) string {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": password, "nickname": nickname,
	})
	require.Equal(env.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegister_ReturnsTokenAndNullRefresh(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "pw123", "nickname": "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "null", string(resp["refreshToken"]))

	var accessToken string
	require.NoError(t, json.Unmarshal(resp["accessToken"], &accessToken))
	assert.True(t, env.codec.IsValid(accessToken, "alice@example.com", time.Now()))
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.registerUser("alice@example.com", "pw123", "Alice")

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "pw456", "nickname": "Clone",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFields_BadRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_EnumerationResistance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.registerUser("alice@example.com", "pw123", "Alice")

	recUnknown := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "pw123",
	})
	recWrongPw := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrongPw.Code)
	assert.Equal(t, recUnknown.Body.String(), recWrongPw.Body.String())
}

func TestLogout_StatelessAck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoards_RequireAuthentication(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/boards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/boards", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBoards_ExpiredTokenLikeNoToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.registerUser("alice@example.com", "pw123", "Alice")

	expired, err := env.codec.Issue("alice@example.com", "Alice", []string{models.RoleUser}, time.Now().Add(-2*e2eTTL))
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/boards", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBoards_CreateUpdateDelete_Ownership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	aliceToken := env.registerUser("alice@example.com", "pw123", "Alice")
	bobToken := env.registerUser("bob@example.com", "pw456", "Bob")

	// Alice creates a board; the response carries her as author.
	rec := env.do(http.MethodPost, "/api/boards", aliceToken, map[string]string{
		"title": "hello", "content": "first post",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Status int `json:"status"`
		Data   struct {
			BID    uint `json:"bid"`
			Author struct {
				Nickname string `json:"nickname"`
			} `json:"author"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, http.StatusCreated, created.Status)
	assert.Equal(t, "Alice", created.Data.Author.Nickname)
	require.NotZero(t, created.Data.BID)

	bid := created.Data.BID
	boardPath := "/api/boards/" + itoa(bid)

	// Bob may read it but not touch it.
	rec = env.do(http.MethodGet, boardPath, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPut, boardPath, bobToken, map[string]string{
		"title": "hacked", "content": "by bob",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodDelete, boardPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Alice updates and deletes her own board.
	rec = env.do(http.MethodPut, boardPath, aliceToken, map[string]string{
		"title": "hello v2", "content": "edited",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, boardPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, boardPath, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoards_ListPaged(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	aliceToken := env.registerUser("alice@example.com", "pw123", "Alice")

	for i := 0; i < 7; i++ {
		rec := env.do(http.MethodPost, "/api/boards", aliceToken, map[string]string{
			"title": "post", "content": "c",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/boards?page=1&size=5", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Boards     []json.RawMessage `json:"boards"`
			Total      int64             `json:"total"`
			TotalPages int64             `json:"total_pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Boards, 5)
	assert.Equal(t, int64(7), resp.Data.Total)
	assert.Equal(t, int64(2), resp.Data.TotalPages)
}

func TestBoards_Mine_OnlyOwnBoards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	aliceToken := env.registerUser("alice@example.com", "pw123", "Alice")
	bobToken := env.registerUser("bob@example.com", "pw456", "Bob")

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/api/boards", aliceToken, map[string]string{"title": "a", "content": ""})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := env.do(http.MethodPost, "/api/boards", bobToken, map[string]string{"title": "b", "content": ""})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/boards/mine", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Author struct {
				Nickname string `json:"nickname"`
			} `json:"author"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, b := range resp.Data {
		assert.Equal(t, "Alice", b.Author.Nickname)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
