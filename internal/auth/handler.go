package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cafe-compass/internal/web"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// Handler は新規登録・ログイン・ログアウトのHTMLルートを担当します。
// ログイン失敗はIPごとに数え、上限を超えたIPは一定時間ロックします。
type Handler struct {
	creds    *CredentialService
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewHandler は Handler を作成します。
func NewHandler(creds *CredentialService) *Handler {
	return &Handler{
		creds:    creds,
		attempts: make(map[string]*attemptState),
	}
}

type signupForm struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Description string
	ImageURL    string
	Password    string
}

func (f *signupForm) bind(c *gin.Context) {
	f.Username = strings.TrimSpace(c.PostForm("username"))
	f.Email = strings.TrimSpace(c.PostForm("email"))
	f.FirstName = strings.TrimSpace(c.PostForm("first_name"))
	f.LastName = strings.TrimSpace(c.PostForm("last_name"))
	f.Description = strings.TrimSpace(c.PostForm("description"))
	f.ImageURL = strings.TrimSpace(c.PostForm("image_url"))
	f.Password = c.PostForm("password")
}

func (f *signupForm) validate() map[string]string {
	problems := map[string]string{}
	if f.Username == "" {
		problems["username"] = "Username is required."
	}
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		problems["email"] = "A valid email is required."
	}
	if f.FirstName == "" {
		problems["first_name"] = "First name is required."
	}
	if f.LastName == "" {
		problems["last_name"] = "Last name is required."
	}
	if len(f.Password) < minPasswordLength {
		problems["password"] = "Password must be at least 6 characters."
	}
	if !web.ValidURL(f.ImageURL) {
		problems["image_url"] = "Image must be a valid URL."
	}
	return problems
}

// ShowSignup は GET /signup のハンドラーです。
func (h *Handler) ShowSignup(c *gin.Context) {
	web.Render(c, http.StatusOK, "signup.html", gin.H{
		"Title":    "Sign Up",
		"Form":     &signupForm{},
		"Problems": map[string]string{},
	})
}

// HandleSignup は POST /signup のハンドラーです。登録に成功したら
// そのままログインさせてカフェ一覧へ移動します。
func (h *Handler) HandleSignup(c *gin.Context) {
	var form signupForm
	form.bind(c)

	problems := form.validate()
	if len(problems) > 0 {
		web.Render(c, http.StatusOK, "signup.html", gin.H{
			"Title":    "Sign Up",
			"Form":     &form,
			"Problems": problems,
		})
		return
	}

	user, err := h.creds.Register(RegisterInput{
		Username:    form.Username,
		Password:    form.Password,
		Email:       form.Email,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Description: form.Description,
		ImageURL:    form.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrWeakCredential):
			problems["password"] = "Password must be at least 6 characters."
		case errors.Is(err, ErrDuplicateUsername):
			problems["username"] = "Username already taken."
		default:
			problems["form"] = "Could not create your account. Please try again."
		}
		web.Render(c, http.StatusOK, "signup.html", gin.H{
			"Title":    "Sign Up",
			"Form":     &form,
			"Problems": problems,
		})
		return
	}

	if err := Login(c, user); err != nil {
		Flash(c, "Account created. Please log in.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	Flash(c, "You are signed up and logged in.")
	c.Redirect(http.StatusFound, "/cafes")
}

type loginForm struct {
	Username string
	Password string
}

// ShowLogin は GET /login のハンドラーです。
func (h *Handler) ShowLogin(c *gin.Context) {
	web.Render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log In",
		"Form":  &loginForm{},
	})
}

// HandleLogin は POST /login のハンドラーです。存在しないユーザーと
// パスワード誤りは同じメッセージで返し、どちらだったかは漏らしません。
func (h *Handler) HandleLogin(c *gin.Context) {
	form := loginForm{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}

	if form.Username == "" || form.Password == "" {
		web.Render(c, http.StatusOK, "login.html", gin.H{
			"Title":   "Log In",
			"Form":    &form,
			"Problem": "Username and password are required.",
		})
		return
	}

	ip := c.ClientIP()
	if retryAfter := h.checkLock(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		web.Render(c, http.StatusTooManyRequests, "login.html", gin.H{
			"Title":   "Log In",
			"Form":    &form,
			"Problem": "Too many failed logins. Please wait a few minutes and try again.",
		})
		return
	}

	user, err := h.creds.Authenticate(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) || errors.Is(err, ErrBadPassword) {
			h.recordFailure(ip)
			web.Render(c, http.StatusOK, "login.html", gin.H{
				"Title":   "Log In",
				"Form":    &form,
				"Problem": "Invalid credentials.",
			})
			return
		}
		web.Render(c, http.StatusOK, "login.html", gin.H{
			"Title":   "Log In",
			"Form":    &form,
			"Problem": "Something went wrong. Please try again.",
		})
		return
	}

	h.resetAttempts(ip)

	if err := Login(c, user); err != nil {
		web.Render(c, http.StatusOK, "login.html", gin.H{
			"Title":   "Log In",
			"Form":    &form,
			"Problem": "Could not start your session. Please try again.",
		})
		return
	}

	Flash(c, "Hello, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/cafes")
}

// checkLock はIPがロック中なら残り時間を返します。
func (h *Handler) checkLock(ip string) time.Duration {
	h.lock.Lock()
	defer h.lock.Unlock()

	state, ok := h.attempts[ip]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

func (h *Handler) recordFailure(ip string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	now := time.Now()
	state, ok := h.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		h.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}
}

func (h *Handler) resetAttempts(ip string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.attempts, ip)
}

// HandleLogout は POST /logout のハンドラーです。
func (h *Handler) HandleLogout(c *gin.Context) {
	_ = Logout(c)
	Flash(c, "You have successfully logged out.")
	c.Redirect(http.StatusFound, "/")
}
