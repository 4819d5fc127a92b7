package api_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/api"
	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/authz"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/router"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
	"github.com/pantrychef/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	fixtures *testhelpers.Fixtures
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	m := metrics.New()

	recs := service.NewRecommendationService(
		recommend.NewEngine(service.NewGormRecommendationProvider(db), log), nil, m, log)
	auth := service.NewAuthService(db, "api-test-secret", time.Hour, log)
	recipes := service.NewRecipeService(db, recs, log)

	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	r, err := router.SetupRouter(router.Options{
		Logger:         log,
		Metrics:        m,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		TokenValidator: auth,
		Enforcer:       enforcer,
	}, router.Handlers{
		Health:          api.NewHealthHandler(db, nil),
		Auth:            api.NewAuthHandler(auth),
		Ingredients:     api.NewIngredientHandler(service.NewIngredientService(db, recs, log)),
		Recipes:         api.NewRecipeHandler(recipes, nil),
		Pantry:          api.NewPantryHandler(service.NewPantryService(db, recs, log)),
		Restrictions:    api.NewRestrictionHandler(service.NewRestrictionService(db, recs, log)),
		Recommendations: api.NewRecommendationHandler(recs),
		Dashboard:       api.NewDashboardHandler(service.NewDashboardService(db, recs)),
	})
	require.NoError(t, err)

	return &testServer{
		router:   r,
		db:       db,
		auth:     auth,
		fixtures: testhelpers.NewFixtures(t, db),
	}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperrors.Code {
	t.Helper()
	var body apperrors.AppError
	decode(t, w, &body)
	return body.Code
}

func TestHealthCheck(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	s := setupServer(t)

	register := types.RegisterRequest{Email: "Cook@Example.com", Password: "password123", Name: "Cook"}
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var auth types.AuthResponse
	decode(t, w, &auth)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "cook@example.com", auth.User.Email)
	assert.Equal(t, models.RoleUser, auth.User.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "cook@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "cook@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", types.RegisterRequest{Email: "not-an-email", Password: "password123", Name: "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/recommendations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	s := setupServer(t)
	userToken := s.token(t, s.fixtures.User(models.RoleUser))
	adminToken := s.token(t, s.fixtures.User(models.RoleAdmin))

	req := types.CreateIngredientRequest{Name: "Saffron"}
	w := s.do(t, http.MethodPost, "/api/v1/catalog/ingredients", userToken, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/catalog/ingredients", adminToken, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/catalog/ingredients", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Ingredients []models.Ingredient `json:"ingredients"`
	}
	decode(t, w, &body)
	require.Len(t, body.Ingredients, 1)
	assert.Equal(t, "Saffron", body.Ingredients[0].Name)
}

func TestRecipeLifecycle(t *testing.T) {
	s := setupServer(t)
	adminToken := s.token(t, s.fixtures.User(models.RoleAdmin))
	ings := s.fixtures.Ingredients("Bread", "Jam")

	w := s.do(t, http.MethodPost, "/api/v1/catalog/recipes", adminToken, types.CreateRecipeRequest{
		Title:       "Jam Toast",
		Ingredients: []types.RequirementInput{{IngredientID: ings[0].ID, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var recipe models.Recipe
	decode(t, w, &recipe)

	path := "/api/v1/catalog/recipes/" + recipe.ID.String()
	w = s.do(t, http.MethodPost, path+"/ingredients", adminToken, types.RequirementInput{IngredientID: ings[1].ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Recipe
	decode(t, w, &fetched)
	require.Len(t, fetched.Requirements, 2)
	assert.Equal(t, "Jam", fetched.Requirements[1].Ingredient.Name)

	w = s.do(t, http.MethodDelete, path+"/ingredients/"+ings[1].ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/catalog/recipes/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	s := setupServer(t)
	user := s.fixtures.User(models.RoleUser)
	token := s.token(t, user)
	omelette, ings := s.fixtures.Omelette()
	s.fixtures.Own(user.ID, ings["Eggs"], ings["Cheese"], ings["Milk"])

	w := s.do(t, http.MethodGet, "/api/v1/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.RecommendationsResponse
	decode(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	rec := resp.Recommendations[0]
	assert.Equal(t, omelette.ID, rec.RecipeID)
	assert.Equal(t, user.ID, rec.UserID)
	assert.Equal(t, 50.0, rec.VScore)
	assert.Equal(t, []string{"Butter", "Salt", "Pepper"}, rec.MissingIngredients)
	assert.Equal(t, 6, rec.TotalIngredients)
	assert.Equal(t, 3, rec.OwnedIngredients)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations?cookable=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Recommendations)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations?min_score=150", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations/"+omelette.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations/"+uuid.New().String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendationsReflectPantryChanges(t *testing.T) {
	s := setupServer(t)
	user := s.fixtures.User(models.RoleUser)
	token := s.token(t, user)
	_, ings := s.fixtures.Omelette()

	w := s.do(t, http.MethodPost, "/api/v1/pantry", token, types.AddPantryItemRequest{IngredientID: ings["Eggs"].ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/pantry", token, types.AddPantryItemRequest{IngredientID: ings["Eggs"].ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp types.RecommendationsResponse
	w = s.do(t, http.MethodGet, "/api/v1/recommendations", token, nil)
	decode(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 16.67, resp.Recommendations[0].VScore)

	w = s.do(t, http.MethodPost, "/api/v1/restrictions", token, types.AddRestrictionRequest{
		IngredientID: ings["Milk"].ID,
		Type:         models.RestrictionAllergy,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/recommendations", token, nil)
	decode(t, w, &resp)
	assert.Zero(t, resp.Count)
}

func TestRestrictionTypeIsValidated(t *testing.T) {
	s := setupServer(t)
	user := s.fixtures.User(models.RoleUser)
	ing := s.fixtures.Ingredient("Peanuts")

	w := s.do(t, http.MethodPost, "/api/v1/restrictions", s.token(t, user), map[string]string{
		"ingredient_id": ing.ID.String(),
		"type":          "spicy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForeignPantryItemIsForbidden(t *testing.T) {
	s := setupServer(t)
	owner := s.fixtures.User(models.RoleUser)
	other := s.fixtures.User(models.RoleUser)
	items := s.fixtures.Own(owner.ID, s.fixtures.Ingredient("Rice"))

	path := "/api/v1/pantry/" + items[0].ID.String()
	w := s.do(t, http.MethodDelete, path, s.token(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, w))

	w = s.do(t, http.MethodDelete, path, s.token(t, owner), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDashboardStats(t *testing.T) {
	s := setupServer(t)
	user := s.fixtures.User(models.RoleUser)
	_, ings := s.fixtures.Omelette()
	s.fixtures.Own(user.ID, ings["Eggs"])

	w := s.do(t, http.MethodGet, "/api/v1/dashboard/stats", s.token(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats types.DashboardStats
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.PantryItems)
	assert.Equal(t, 1, stats.RecommendedRecipes)
	assert.Equal(t, 0, stats.CookableRecipes)
	assert.Len(t, stats.TopMissing, 5)
}

func TestImageUploadWithoutBucket(t *testing.T) {
	s := setupServer(t)
	adminToken := s.token(t, s.fixtures.User(models.RoleAdmin))
	recipe := s.fixtures.Recipe("Toast")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "toast.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/recipes/"+recipe.ID.String()+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.CodeStorageUnavailable, errorCode(t, w))
}
