package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mediremind-server/internal/config"
	"mediremind-server/internal/models"
	"mediremind-server/internal/routes"
	"mediremind-server/internal/workflow"
)

// dbEnv backs the router with an in-memory database so the handlers that
// talk to gorm directly (auth, patients, staff) run end to end.
type dbEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func newDBEnv(t *testing.T) *dbEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Patient{},
		&models.StaffProfile{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	engine := workflow.NewService(workflow.NewGormRepository(db), workflow.NewNoopLocker(), nil, nil)
	router := gin.New()
	routes.SetupRoutes(router, db, cfg, engine)

	return &dbEnv{router: router, db: db, cfg: cfg}
}

func (e *dbEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *dbEnv) register(t *testing.T, email, role string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"full_name": "Neema John",
		"phone":     "255700000001",
		"role":      role,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (e *dbEnv) login(t *testing.T, email string) tokenPair {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var pair tokenPair
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestRegister_CreatesRoleProfiles(t *testing.T) {
	env := newDBEnv(t)

	env.register(t, "patient@example.com", "patient")
	env.register(t, "doctor@example.com", "doctor")

	var patientUser models.User
	assert.NoError(t, env.db.Where("email = ?", "patient@example.com").First(&patientUser).Error)
	assert.Equal(t, models.RolePatient, patientUser.Role)

	var patient models.Patient
	assert.NoError(t, env.db.Where("user_id = ?", patientUser.ID).First(&patient).Error)
	assert.Equal(t, "Neema John", patient.FullName)
	assert.Equal(t, "patient@example.com", patient.Email)

	var doctorUser models.User
	assert.NoError(t, env.db.Where("email = ?", "doctor@example.com").First(&doctorUser).Error)

	var staff models.StaffProfile
	assert.NoError(t, env.db.Where("user_id = ?", doctorUser.ID).First(&staff).Error)
	assert.Equal(t, "doctor", staff.Position)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     "patient@example.com",
		"password":  "anotherpassword",
		"full_name": "Someone Else",
		"phone":     "255700000002",
		"role":      "patient",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User with this email already exists")

	var count int64
	env.db.Model(&models.User{}).Where("email = ?", "patient@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegister_PasswordNotStoredInPlaintext(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")

	var user models.User
	assert.NoError(t, env.db.Where("email = ?", "patient@example.com").First(&user).Error)
	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, user.CheckPassword("password123"))
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "patient@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestRefreshToken_RotationRevokesOldToken(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")
	pair := env.login(t, "patient@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var rotated tokenPair
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.NotEmpty(t, rotated.RefreshToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token is now revoked in storage
	var stored models.RefreshToken
	assert.NoError(t, env.db.Where("token = ?", pair.RefreshToken).First(&stored).Error)
	assert.True(t, stored.IsRevoked)

	// Replaying it is rejected
	w = env.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Refresh token not found, expired, or revoked")

	// The replacement still works
	w = env.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": rotated.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshToken_GarbageToken(t *testing.T) {
	env := newDBEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": "not-a-jwt",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")
	pair := env.login(t, "patient@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/auth/logout", pair.AccessToken, map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.RefreshToken
	assert.NoError(t, env.db.Where("token = ?", pair.RefreshToken).First(&stored).Error)
	assert.True(t, stored.IsRevoked)

	// Logging out again with the same token is still a success
	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", pair.AccessToken, map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestForgotPassword_IssuesResetToken(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")

	w := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "patient@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password reset email sent")

	var user models.User
	assert.NoError(t, env.db.Where("email = ?", "patient@example.com").First(&user).Error)
	assert.NotEmpty(t, user.ResetToken)
	assert.NotNil(t, user.ResetTokenExpiry)
}

func TestForgotPassword_DoesNotRevealUnknownEmail(t *testing.T) {
	env := newDBEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password reset email sent")
}

func TestWhoAmI(t *testing.T) {
	env := newDBEnv(t)
	env.register(t, "patient@example.com", "patient")
	pair := env.login(t, "patient@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/auth/whoami", pair.AccessToken, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patient@example.com")
	assert.NotContains(t, w.Body.String(), `"password"`)
}
