package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"biblioteca-api/internal/googlebooks"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/recommend"
	"biblioteca-api/internal/service"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
)

// Códigos de error que ve el cliente.
const (
	CodeInvalidCredentials = "AUTH_001"
	CodeTokenExpired       = "AUTH_002"
	CodeTokenInvalid       = "AUTH_003"
	CodeUnauthorized       = "AUTH_004"
	CodeForbidden          = "AUTH_005"

	CodeUserNotFound      = "USER_001"
	CodeEmailExists       = "USER_003"
	CodeRegistrationTaken = "USER_004"
	CodeUserInactive      = "USER_005"

	CodeBookNotFound = "BOOK_001"
	CodeExternalAPI  = "BOOK_005"

	CodeReadingNotFound = "READING_001"
	CodeReadingExists   = "READING_002"
	CodePagesExceeded   = "READING_003"

	CodePreferenceNotFound = "PREF_001"
	CodePreferenceExists   = "PREF_002"

	CodeValidation   = "VAL_001"
	CodeInvalidInput = "VAL_002"

	CodeInternal = "SYS_001"
	CodeDatabase = "SYS_002"
	CodeNotFound = "SYS_003"
)

type envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data"`
	Message   string    `json:"message"`
	Count     *int      `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success   bool        `json:"success"`
	Error     errorDetail `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, status int, data any, msg string) {
	if msg == "" {
		msg = "Operación exitosa"
	}
	writeJSON(w, status, envelope{Success: true, Data: data, Message: msg, Timestamp: time.Now().UTC()})
}

// list agrega count al sobre.
func list[T any](w http.ResponseWriter, items []T, msg string) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	if msg == "" {
		msg = "Operación exitosa"
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Message: msg, Count: &n, Timestamp: time.Now().UTC()})
}

func fail(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, errorEnvelope{
		Error:     errorDetail{Code: code, Message: msg, Details: details},
		Timestamp: time.Now().UTC(),
	})
}

// serviceError traduce los errores de negocio a status y código.
// Lo que no se reconoce se loguea y sale como SYS_001.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, CodeForbidden
	case errors.Is(err, service.ErrUserInactive):
		status, code = http.StatusForbidden, CodeUserInactive
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, recommend.ErrUserNotFound):
		status, code = http.StatusNotFound, CodeUserNotFound
	case errors.Is(err, service.ErrEmailTaken):
		status, code = http.StatusBadRequest, CodeEmailExists
	case errors.Is(err, service.ErrRegistrationTaken):
		status, code = http.StatusBadRequest, CodeRegistrationTaken
	case errors.Is(err, service.ErrInvalidUserState), errors.Is(err, service.ErrInvalidReadState),
		errors.Is(err, service.ErrNoFields), errors.Is(err, service.ErrLevelInUse):
		status, code = http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, service.ErrDuplicateName):
		status, code = http.StatusBadRequest, CodeValidation
	case errors.Is(err, service.ErrBookNotFound):
		status, code = http.StatusNotFound, CodeBookNotFound
	case errors.Is(err, service.ErrReadingNotFound):
		status, code = http.StatusNotFound, CodeReadingNotFound
	case errors.Is(err, service.ErrReadingExists):
		status, code = http.StatusBadRequest, CodeReadingExists
	case errors.Is(err, service.ErrPagesExceeded):
		status, code = http.StatusBadRequest, CodePagesExceeded
	case errors.Is(err, service.ErrPreferenceNotFound):
		status, code = http.StatusNotFound, CodePreferenceNotFound
	case errors.Is(err, service.ErrPreferenceExists):
		status, code = http.StatusBadRequest, CodePreferenceExists
	case errors.Is(err, service.ErrLevelNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, recommend.ErrInsufficientData):
		status, code = http.StatusConflict, CodeInvalidInput
	case errors.Is(err, googlebooks.ErrRejected):
		status, code = http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, googlebooks.ErrUnavailable), errors.Is(err, service.ErrNodesUnavailable):
		status, code = http.StatusServiceUnavailable, CodeExternalAPI
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		status, code = http.StatusServiceUnavailable, CodeDatabase
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("[http] error interno")
	}
	msg := err.Error()
	switch code {
	case CodeInternal:
		msg = "Error interno del servidor"
	case CodeDatabase:
		msg = "Base de datos no disponible"
	}
	fail(w, status, code, msg, nil)
}

// pathInt lee un parámetro numérico; escribe VAL_002 si no lo es.
func pathInt(w http.ResponseWriter, raw, name string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		fail(w, http.StatusBadRequest, CodeInvalidInput, name+" inválido", map[string]string{name: raw})
		return 0, false
	}
	return n, true
}

func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}
