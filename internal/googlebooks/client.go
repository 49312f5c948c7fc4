// Package googlebooks consulta la API pública de Google Books para
// prellenar altas de libros. Las llamadas pasan por un circuit breaker.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/metrics"
	"biblioteca-api/internal/models"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"
	MaxResults     = 40
	breakerName    = "google-books"

	unknownAuthor    = "Autor Desconocido"
	unknownPublisher = "Editorial Desconocida"
	noSynopsis       = "Sinopsis no disponible"
	maxSynopsis      = 2000
)

var (
	// ErrUnavailable: el circuito está abierto o la API respondió con error.
	ErrUnavailable = errors.New("googlebooks: servicio no disponible")
	// ErrRejected: la API rechazó la consulta (4xx salvo 429).
	ErrRejected = errors.New("googlebooks: consulta rechazada")
)

// StatusError: la API respondió con un status distinto de 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("google books status %d", e.Code)
}

// clientError: 4xx propio de la consulta. 429 es presión del upstream y
// cuenta como falla.
func clientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
}

// isSuccessful decide qué errores suma el breaker: ni las cancelaciones
// del llamador ni los errores de la consulta dicen nada de la salud de la API.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || clientError(err)
}

type Query struct {
	Q        string
	Subject  string
	Language string
	Max      int
	Start    int
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*volumesResponse]
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[*volumesResponse](gobreaker.Settings{
		Name:         breakerName,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: isSuccessful,
		// abre con >= 60% de fallas sobre al menos 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Msg("[google-books] abriendo circuito")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("[google-books] cambio de estado")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return c
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	Language            string   `json:"language"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// Search busca volúmenes. Con Subject se ignora Q; Max se limita a 40.
func (c *Client) Search(ctx context.Context, q Query) ([]models.BookPrefill, error) {
	resp, err := c.cb.Execute(func() (*volumesResponse, error) {
		return c.fetch(ctx, q)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		case clientError(err):
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "client_error").Inc()
			return nil, fmt.Errorf("%w: %v", ErrRejected, err)
		case errors.Is(err, context.Canceled):
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "canceled").Inc()
			return nil, err
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	out := make([]models.BookPrefill, 0, len(resp.Items))
	for _, v := range resp.Items {
		if p, ok := toPrefill(v); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, q Query) (*volumesResponse, error) {
	n := q.Max
	if n <= 0 || n > MaxResults {
		n = MaxResults
	}
	term := q.Q
	if q.Subject != "" {
		term = "subject:" + q.Subject
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("maxResults", strconv.Itoa(n))
	params.Set("startIndex", strconv.Itoa(q.Start))
	if q.Language != "" {
		params.Set("langRestrict", q.Language)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: res.StatusCode}
	}
	var out volumesResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func toPrefill(v volume) (models.BookPrefill, bool) {
	info := v.VolumeInfo
	if info.Title == "" {
		return models.BookPrefill{}, false
	}
	p := models.BookPrefill{
		GoogleID:   v.ID,
		Title:      info.Title,
		Synopsis:   truncate(info.Description),
		TotalPages: info.PageCount,
		CoverURL:   info.ImageLinks.Thumbnail,
		Publisher:  info.Publisher,
		Authors:    info.Authors,
		Categories: info.Categories,
		Language:   info.Language,
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{unknownAuthor}
	}
	if p.Publisher == "" {
		p.Publisher = unknownPublisher
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			p.ISBN = id.Identifier
			break
		}
	}
	return p, true
}

func truncate(s string) string {
	if s == "" {
		return noSynopsis
	}
	if utf8.RuneCountInString(s) <= maxSynopsis {
		return s
	}
	r := []rune(s)
	return string(r[:maxSynopsis-3]) + "..."
}
