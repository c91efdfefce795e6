package testutil

import (
	"math"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/edupredict/predictcli/services/predictapi"
)

var StubSecret = []byte("predictcli.tests.stub-secret")

// StubUser is an account known to the StubAPI.
type StubUser struct {
	ID        int
	Username  string
	Email     string
	Name      string
	Role      string
	ClassName string
	hash      []byte
}

// Claims is the token payload the stub issues.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// StubAPI is an in-memory stand-in for the prediction backend: login,
// register, profile, predict and history over real HTTP, bcrypt-hashed
// passwords and signed bearer tokens. Behavior quirks of the real backend
// (field-keyed registration errors, token-only login responses) are
// reproduced so the clients can be tested against them.
type StubAPI struct {
	Echo *echo.Echo

	// OmitLoginUser makes login return tokens only, like older backend
	// builds; the session manager must fabricate an identity.
	OmitLoginUser bool

	// TokenTTL bounds issued tokens. Defaults to an hour.
	TokenTTL time.Duration

	mu            sync.Mutex
	users         map[string]*StubUser
	history       map[string][]predictapi.HistoryEntry
	nextID        int
	loginCalls    int
	registerCalls int
}

func NewStubAPI() *StubAPI {
	s := &StubAPI{
		TokenTTL: time.Hour,
		users:    make(map[string]*StubUser),
		history:  make(map[string][]predictapi.HistoryEntry),
		nextID:   1,
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/auth/login/", s.login)
	e.POST("/auth/register/", s.register)
	e.GET("/auth/profile/", s.profile)
	e.POST("/api/predict/", s.predict)
	e.GET("/api/predictions/history/", s.getHistory)
	s.Echo = e
	return s
}

// Server exposes the stub over a real listener; callers must Close it.
func (s *StubAPI) Server() *httptest.Server {
	return httptest.NewServer(s.Echo)
}

// AddUser registers an account directly, bypassing the HTTP surface.
func (s *StubAPI) AddUser(name, uname, email, pwd, role, className string) *StubUser {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	usr := &StubUser{
		ID:        s.nextID,
		Username:  uname,
		Email:     email,
		Name:      name,
		Role:      role,
		ClassName: className,
		hash:      hash,
	}
	s.nextID++
	s.users[uname] = usr
	return usr
}

// LoginCalls reports how many login requests actually reached the stub.
func (s *StubAPI) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// RegisterCalls reports how many register requests reached the stub.
func (s *StubAPI) RegisterCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerCalls
}

// MakeToken issues a token for the given user, optionally already expired.
func (s *StubAPI) MakeToken(usr *StubUser, ttl time.Duration) string {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   strconv.Itoa(usr.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Username: usr.Username,
		Email:    usr.Email,
		Role:     usr.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(StubSecret)
	if err != nil {
		panic(err)
	}
	return ss
}

func (s *StubAPI) findUser(identifier string) *StubUser {
	if usr, ok := s.users[identifier]; ok {
		return usr
	}
	for _, usr := range s.users {
		if usr.Email == identifier {
			return usr
		}
	}
	// the backend also resolves the local part of an email
	if at := strings.Index(identifier, "@"); at > 0 {
		if usr, ok := s.users[identifier[:at]]; ok {
			return usr
		}
	}
	return nil
}

func userJSON(usr *StubUser) echo.Map {
	return echo.Map{
		"id":         usr.ID,
		"username":   usr.Username,
		"email":      usr.Email,
		"name":       usr.Name,
		"role":       usr.Role,
		"class_name": null.NewString(usr.ClassName, usr.ClassName != ""),
	}
}

// Handlers

func (s *StubAPI) login(ctx echo.Context) error {
	var req struct {
		Username string `json:"Username"`
		Password string `json:"Password"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, echo.Map{"error": "malformed request"})
	}

	s.mu.Lock()
	s.loginCalls++
	usr := s.findUser(req.Username)
	s.mu.Unlock()

	if usr == nil || bcrypt.CompareHashAndPassword(usr.hash, []byte(req.Password)) != nil {
		return ctx.JSON(400, echo.Map{"detail": "invalid credentials"})
	}

	resp := echo.Map{
		"access":  s.MakeToken(usr, s.TokenTTL),
		"refresh": s.MakeToken(usr, 4*s.TokenTTL),
		"message": "login successful",
	}
	if !s.OmitLoginUser {
		resp["user"] = userJSON(usr)
	}
	return ctx.JSON(200, resp)
}

func (s *StubAPI) register(ctx echo.Context) error {
	var req struct {
		Username string `json:"Username"`
		Password string `json:"Password"`
		Email    string `json:"Email"`
		Name     string `json:"Name"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, echo.Map{"error": "malformed request"})
	}

	s.mu.Lock()
	s.registerCalls++
	s.mu.Unlock()

	if req.Username == "" {
		return ctx.JSON(400, echo.Map{"Username": []string{"This field is required."}})
	}
	if req.Password == "" {
		return ctx.JSON(400, echo.Map{"Password": []string{"This field is required."}})
	}

	s.mu.Lock()
	_, taken := s.users[req.Username]
	s.mu.Unlock()
	if taken {
		return ctx.JSON(400, echo.Map{"Username": []string{"user with this Username already exists."}})
	}

	s.AddUser(req.Name, req.Username, req.Email, req.Password, "student", "")
	return ctx.JSON(201, echo.Map{"Username": req.Username, "Email": req.Email})
}

func (s *StubAPI) authenticate(ctx echo.Context) (*StubUser, error) {
	header := ctx.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, echo.NewHTTPError(401, "missing token")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(*jwt.Token) (interface{}, error) {
		return StubSecret, nil
	})
	if err != nil {
		return nil, echo.NewHTTPError(401, "Token expired")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	usr, ok := s.users[claims.Username]
	if !ok {
		return nil, echo.NewHTTPError(401, "unknown user")
	}
	return usr, nil
}

func (s *StubAPI) profile(ctx echo.Context) error {
	usr, err := s.authenticate(ctx)
	if err != nil {
		he := err.(*echo.HTTPError)
		return ctx.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return ctx.JSON(200, userJSON(usr))
}

func (s *StubAPI) predict(ctx echo.Context) error {
	var in predictapi.Input
	if err := ctx.Bind(&in); err != nil {
		return ctx.JSON(400, echo.Map{"error": "malformed request"})
	}

	score := Score(in)
	// history is only recorded for authenticated callers
	if usr, err := s.authenticate(ctx); err == nil {
		s.mu.Lock()
		entries := s.history[usr.Username]
		s.history[usr.Username] = append([]predictapi.HistoryEntry{{
			ID:             len(entries) + 1,
			Input:          in,
			PredictedScore: score,
			CreatedAt:      time.Now().UTC(),
		}}, entries...)
		s.mu.Unlock()
	}
	return ctx.JSON(200, echo.Map{"predictedScore": score})
}

func (s *StubAPI) getHistory(ctx echo.Context) error {
	usr, err := s.authenticate(ctx)
	if err != nil {
		he := err.(*echo.HTTPError)
		return ctx.JSON(he.Code, echo.Map{"error": he.Message})
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	entries := s.history[usr.Username]
	s.mu.Unlock()

	if offset > len(entries) {
		offset = len(entries)
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return ctx.JSON(200, echo.Map{"predictions": entries[offset:end]})
}

// Score is the stub's deterministic stand-in for the prediction model.
func Score(in predictapi.Input) float64 {
	score := 0.35*in.PastExamScores + 0.25*in.AttendanceRate + 1.5*in.StudyHoursPerWeek
	if in.InternetAccessAtHome == "Yes" {
		score += 2
	}
	if in.ExtracurricularActivities == "Yes" {
		score += 2
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}
