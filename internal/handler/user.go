package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/service"
)

const maxCredentialsBody = 1 << 20

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, _, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

// decodeCredentials accepts a JSON body or a regular form post
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentialsBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			return req, apperror.New(apperror.KindValidation, "invalid request body", err)
		}
		return req, nil
	}

	err := r.ParseForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, apperror.New(apperror.KindValidation, "request body too large", err)
		}
		return req, apperror.New(apperror.KindValidation, "invalid request body", err)
	}

	req.Name = r.PostFormValue("name")
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	return req, nil
}
