package apiHandler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

// UserHandler serves account endpoints.
//
// Routes:
// - POST /users                    sign-up
// - GET  /users/{email}            account lookup
// - POST /users/{email}/avatar     avatar image upload
type UserHandler struct {
	uc  *usecase.UserUsecase
	log *logrus.Entry
}

func NewUserHandler(uc *usecase.UserUsecase, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &UserHandler{uc: uc, log: log.WithField("handler", "users")}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "user handler is not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/users" && r.Method == http.MethodPost:
		h.handleSignUp(w, r)

	case strings.HasPrefix(path, "/users/") && strings.HasSuffix(path, "/avatar") && r.Method == http.MethodPost:
		email := strings.TrimSuffix(strings.TrimPrefix(path, "/users/"), "/avatar")
		h.handleAvatar(w, r, unescape(email))

	case strings.HasPrefix(path, "/users/") && r.Method == http.MethodGet:
		h.handleGet(w, r, unescape(strings.TrimPrefix(path, "/users/")))

	case path == "/users" || strings.HasPrefix(path, "/users/"):
		methodNotAllowed(w)

	default:
		notFound(w)
	}
}

type signUpReq struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Provider string `json:"provider"`
	GoogleID string `json:"googleId"`
}

func (h *UserHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := h.uc.SignUp(r.Context(), usecase.SignUpInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Provider: req.Provider,
		GoogleID: req.GoogleID,
	})
	if err != nil {
		h.log.WithField("email", req.Email).WithError(err).Warn("sign-up rejected")
		switch {
		case errors.Is(err, userdom.ErrAlreadyExists):
			writeErr(w, http.StatusBadRequest, "user already exists with this email and provider")
		case errors.Is(err, userdom.ErrInvalidProvider):
			writeErr(w, http.StatusBadRequest, "invalid provider")
		case errors.Is(err, usecase.ErrPasswordRequired),
			errors.Is(err, usecase.ErrGoogleIDRequired),
			errors.Is(err, usecase.ErrUserInvalidArgument),
			errors.Is(err, userdom.ErrInvalidUser):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    u,
	})
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		writeErr(w, http.StatusBadRequest, "email is required")
		return
	}

	u, err := h.uc.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, userdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) handleAvatar(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		writeErr(w, http.StatusBadRequest, "email is required")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "could not read body")
		return
	}
	if len(data) == 0 {
		writeErr(w, http.StatusBadRequest, "empty image")
		return
	}
	if len(data) > maxAvatarBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	avatarURL, err := h.uc.SetAvatar(r.Context(), email, r.Header.Get("Content-Type"), data)
	if err != nil {
		if errors.Is(err, userdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": avatarURL})
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
