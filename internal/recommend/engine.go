package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultClusters = 5

// InsufficientDataRetry: tras un entrenamiento perezoso fallido por falta
// de usuarios no se vuelve a intentar hasta que pase este intervalo.
const InsufficientDataRetry = 30 * time.Second

const (
	TierCluster  = "cluster"
	TierFallback = "fallback"
	TierNone     = "none"
)

// Engine agrupa usuarios por preferencias con K-Means y recomienda libros
// a partir del cluster. Es seguro para uso concurrente.
type Engine struct {
	vocab    VocabularyReader
	users    UserReader
	books    BookQuery
	store    ModelStore
	defaultK int

	snap    atomic.Pointer[Snapshot]
	sf      singleflight.Group
	trainMu sync.Mutex
	noData  atomic.Pointer[noDataMark]
	now     func() time.Time
	log     zerolog.Logger
}

// noDataMark recuerda el último ErrInsufficientData del entrenamiento perezoso.
type noDataMark struct {
	until time.Time
	err   error
}

func NewEngine(vocab VocabularyReader, users UserReader, books BookQuery, store ModelStore, defaultK int) *Engine {
	if defaultK <= 0 {
		defaultK = DefaultClusters
	}
	return &Engine{
		vocab:    vocab,
		users:    users,
		books:    books,
		store:    store,
		defaultK: defaultK,
		now:      time.Now,
		log:      logging.With("recommend"),
	}
}

type TrainResult struct {
	Version      string      `json:"version"`
	TrainedUsers int         `json:"trainedUsers"`
	K            int         `json:"k"`
	Distribution map[int]int `json:"distribution"`
}

type Result struct {
	UserID int                  `json:"userId"`
	Items  []models.BookSummary `json:"items"`
	// Cluster es nil si no se pudo asignar (se usó solo el fallback).
	Cluster *int   `json:"cluster,omitempty"`
	Peers   int    `json:"peers"`
	Tier    string `json:"tier"`
	Model   string `json:"modelVersion,omitempty"`
}

type UserCluster struct {
	UserID  int    `json:"userId"`
	Name    string `json:"name"`
	Cluster int    `json:"cluster"`
	// TrainedCluster: cluster asignado al entrenar. Difiere de Cluster si las
	// preferencias cambiaron después; nil si el usuario no entró al entrenamiento.
	TrainedCluster *int                    `json:"trainedCluster,omitempty"`
	Preferences    models.PreferenceLabels `json:"preferences"`
}

type ModelInfo struct {
	Status       string      `json:"status"`
	Version      string      `json:"version,omitempty"`
	K            int         `json:"k"`
	Dim          int         `json:"dim"`
	TrainedUsers int         `json:"trainedUsers"`
	TrainedAt    *time.Time  `json:"trainedAt,omitempty"`
	Inertia      float64     `json:"inertia"`
	Distribution map[int]int `json:"distribution,omitempty"`
}

// Vocabulary lee categorías, lenguajes y niveles en paralelo.
func (e *Engine) Vocabulary(ctx context.Context) (Vocabulary, error) {
	var (
		cats   []models.Category
		langs  []models.Language
		levels []models.Level
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cats, err = e.vocab.ListCategories(gctx); return })
	g.Go(func() (err error) { langs, err = e.vocab.ListLanguages(gctx); return })
	g.Go(func() (err error) { levels, err = e.vocab.ListLevels(gctx); return })
	if err := g.Wait(); err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulario: %w", err)
	}
	return NewVocabulary(cats, langs, levels), nil
}

// Train entrena con todos los usuarios activos. k <= 0 usa el k por
// defecto; si hay menos usuarios que k se usa max(2, n).
func (e *Engine) Train(ctx context.Context, k int) (*TrainResult, error) {
	v, err := e.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	return e.train(ctx, k, v)
}

func (e *Engine) train(ctx context.Context, k int, v Vocabulary) (*TrainResult, error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	start := e.now()
	users, err := e.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("usuarios activos: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	n := len(users)
	if n < 2 {
		return nil, fmt.Errorf("%w: %d usuarios activos", ErrInsufficientData, n)
	}
	if k <= 0 {
		k = e.defaultK
	}
	if n < k {
		k = max(2, n)
	}

	raw := make([][]float64, n)
	for i := range users {
		raw[i] = v.Features(&users[i])
	}
	sc := fitScaler(raw)
	data := make([][]float64, n)
	for i, f := range raw {
		data[i] = sc.transform(f)
		if !finite(data[i]) {
			return nil, fmt.Errorf("%w: usuario %d", ErrDegenerateInput, users[i].UserID)
		}
	}

	fit, err := fitKMeans(ctx, data, DefaultKMeansConfig(k))
	if err != nil {
		return nil, err
	}

	trainedAt := e.now().UTC()
	art := &Artifact{
		Partition: Partition{
			Version:      newVersion(trainedAt),
			TrainedAt:    trainedAt,
			K:            k,
			Dim:          v.Dim(),
			CategoryIDs:  v.CategoryIDs(),
			LanguageIDs:  v.LanguageIDs(),
			Mean:         sc.Mean,
			Scale:        sc.Scale,
			Centroids:    fit.Centroids,
			Inertia:      fit.Inertia,
			TrainedUsers: n,
		},
		Assignments: make([]Assignment, n),
	}
	for i, u := range users {
		art.Assignments[i] = Assignment{UserID: u.UserID, Cluster: fit.Labels[i]}
	}

	if err := e.store.Save(ctx, art); err != nil {
		return nil, fmt.Errorf("guardando modelo: %w", err)
	}
	snap := newSnapshot(art)
	e.snap.Store(snap)
	e.noData.Store(nil)

	e.log.Info().
		Str("version", art.Partition.Version).
		Int("users", n).
		Int("k", k).
		Float64("inertia", fit.Inertia).
		Dur("elapsed", e.now().Sub(start)).
		Msg("[kmeans] modelo entrenado")

	return &TrainResult{
		Version:      art.Partition.Version,
		TrainedUsers: n,
		K:            k,
		Distribution: snap.Distribution(),
	}, nil
}

func newVersion(t time.Time) string {
	return t.Format("20060102T150405.000Z") + "-" + uuid.NewString()[:8]
}

// Reload vuelve a leer el artefacto del store (por ejemplo, después de que
// un nodo entrenador lo reemplazó).
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	art, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap := newSnapshot(art)
	e.snap.Store(snap)
	return snap, nil
}

// Snapshot devuelve el modelo en memoria, o nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// ensureModel devuelve un snapshot Ready para v. Si el de memoria falta o
// quedó viejo prueba el store y, si tampoco sirve, entrena con el k por
// defecto. Las llamadas concurrentes comparten el mismo trabajo.
func (e *Engine) ensureModel(ctx context.Context, v Vocabulary) (*Snapshot, error) {
	if s := e.snap.Load(); s.Status(v) == StatusReady {
		return s, nil
	}
	if m := e.noData.Load(); m != nil && e.now().Before(m.until) {
		return nil, m.err
	}

	res, err, _ := e.sf.Do("model", func() (any, error) {
		if s := e.snap.Load(); s.Status(v) == StatusReady {
			return s, nil
		}

		art, err := e.store.Load(ctx)
		switch {
		case err == nil:
			if s := newSnapshot(art); s.Status(v) == StatusReady {
				e.snap.Store(s)
				return s, nil
			}
			e.log.Info().Str("version", art.Partition.Version).Msg("[kmeans] modelo en disco desactualizado, reentrenando")
		case errors.Is(err, ErrModelNotFound):
			e.log.Info().Msg("[kmeans] sin modelo, entrenamiento inicial")
		default:
			e.log.Warn().Err(err).Msg("[kmeans] no se pudo cargar el modelo, reentrenando")
		}

		if _, err := e.train(ctx, e.defaultK, v); err != nil {
			if errors.Is(err, ErrInsufficientData) {
				e.noData.Store(&noDataMark{until: e.now().Add(InsufficientDataRetry), err: err})
				e.log.Info().Err(err).Dur("retry", InsufficientDataRetry).Msg("[kmeans] datos insuficientes, se usa fallback")
			}
			return nil, err
		}
		return e.snap.Load(), nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*Snapshot), nil
}

// AssignCluster devuelve el cluster del usuario, entrenando si hace falta.
func (e *Engine) AssignCluster(ctx context.Context, u *models.UserDoc) (int, error) {
	v, err := e.Vocabulary(ctx)
	if err != nil {
		return 0, err
	}
	c, _, err := e.assign(ctx, u, v)
	return c, err
}

func (e *Engine) assign(ctx context.Context, u *models.UserDoc, v Vocabulary) (int, *Snapshot, error) {
	snap, err := e.ensureModel(ctx, v)
	if err != nil {
		return 0, nil, err
	}
	return snap.Predict(v.Features(u)), snap, nil
}

// Recommend arma hasta limit libros para el usuario. Usuario inexistente
// o limit <= 0 devuelven lista vacía. Si el clustering falla se usa solo
// el fallback; los errores de consulta de libros o usuarios se devuelven.
func (e *Engine) Recommend(ctx context.Context, userID, limit int) (*Result, error) {
	res := &Result{UserID: userID, Items: []models.BookSummary{}, Tier: TierNone}
	if limit <= 0 {
		return res, nil
	}

	u, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usuario %d: %w", userID, err)
	}
	if u == nil {
		return res, nil
	}

	var cats, langs []int
	if u.Preference != nil {
		cats, langs = u.Preference.CategoryIDs, u.Preference.LanguageIDs
	}
	hasPrefs := len(cats) > 0 || len(langs) > 0

	var picked []models.BookDoc
	res.Tier = TierFallback

	cluster, snap, err := e.clusterFor(ctx, u)
	if err != nil {
		lvl := zerolog.WarnLevel
		if errors.Is(err, ErrInsufficientData) {
			lvl = zerolog.DebugLevel
		}
		logging.Ctx(ctx).WithLevel(lvl).Err(err).Int("user", userID).Msg("[recommend] sin cluster, usando fallback")
	} else {
		res.Cluster = &cluster
		res.Model = snap.Version()
		peers := snap.Peers(cluster, userID)
		res.Peers = len(peers)

		if len(peers) > 0 && hasPrefs {
			books, err := e.books.FindByAnyTag(ctx, cats, langs, nil, limit)
			if err != nil {
				return nil, fmt.Errorf("libros por tags: %w", err)
			}
			if len(books) > 0 {
				picked = books
				res.Tier = TierCluster
			}
		}
	}

	if len(picked) < limit {
		more, err := e.fallback(ctx, cats, langs, bookIDs(picked), limit-len(picked))
		if err != nil {
			return nil, err
		}
		picked = append(picked, more...)
	}

	res.Items = summarize(dedupe(picked), limit)
	return res, nil
}

func (e *Engine) clusterFor(ctx context.Context, u *models.UserDoc) (int, *Snapshot, error) {
	v, err := e.Vocabulary(ctx)
	if err != nil {
		return 0, nil, err
	}
	return e.assign(ctx, u, v)
}

// fallback: primero libros que comparten tags con las preferencias, después
// los más recientes. Siempre excluye lo ya elegido.
func (e *Engine) fallback(ctx context.Context, cats, langs, exclude []int, limit int) ([]models.BookDoc, error) {
	var out []models.BookDoc
	if len(cats) > 0 || len(langs) > 0 {
		books, err := e.books.FindByAnyTag(ctx, cats, langs, exclude, limit)
		if err != nil {
			return nil, fmt.Errorf("fallback por tags: %w", err)
		}
		out = append(out, books...)
	}
	if len(out) < limit {
		recent, err := e.books.FindRecent(ctx, slices.Concat(exclude, bookIDs(out)), limit-len(out))
		if err != nil {
			return nil, fmt.Errorf("fallback recientes: %w", err)
		}
		out = append(out, recent...)
	}
	return out, nil
}

// GetUserCluster: diagnóstico con el cluster y las preferencias en texto.
func (e *Engine) GetUserCluster(ctx context.Context, userID int) (*UserCluster, error) {
	u, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	v, err := e.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	c, snap, err := e.assign(ctx, u, v)
	if err != nil {
		return nil, err
	}
	uc := &UserCluster{
		UserID:      u.UserID,
		Name:        u.Name,
		Cluster:     c,
		Preferences: v.Labels(u),
	}
	if tc, ok := snap.ClusterOf(u.UserID); ok {
		uc.TrainedCluster = &tc
	}
	return uc, nil
}

// ModelInfo describe el modelo actual sin entrenar. Si no hay nada en
// memoria intenta leerlo del store.
func (e *Engine) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	v, err := e.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	snap := e.snap.Load()
	if snap == nil {
		snap, err = e.Reload(ctx)
		if err != nil && !errors.Is(err, ErrModelNotFound) && !errors.Is(err, ErrModelCorrupt) {
			return nil, err
		}
	}

	info := &ModelInfo{Status: snap.Status(v).String()}
	if snap == nil {
		return info, nil
	}
	p := snap.Partition()
	trainedAt := p.TrainedAt
	info.Version = p.Version
	info.K = p.K
	info.Dim = p.Dim
	info.TrainedUsers = p.TrainedUsers
	info.TrainedAt = &trainedAt
	info.Inertia = p.Inertia
	info.Distribution = snap.Distribution()
	return info, nil
}

func bookIDs(books []models.BookDoc) []int {
	ids := make([]int, len(books))
	for i, b := range books {
		ids[i] = b.BookID
	}
	return ids
}

func dedupe(books []models.BookDoc) []models.BookDoc {
	seen := make(map[int]struct{}, len(books))
	out := books[:0:0]
	for _, b := range books {
		if _, ok := seen[b.BookID]; ok {
			continue
		}
		seen[b.BookID] = struct{}{}
		out = append(out, b)
	}
	return out
}

func summarize(books []models.BookDoc, limit int) []models.BookSummary {
	if len(books) > limit {
		books = books[:limit]
	}
	out := make([]models.BookSummary, 0, len(books))
	for _, b := range books {
		out = append(out, Summarize(b))
	}
	return out
}

// Summarize da el formato de salida de un libro recomendado.
func Summarize(b models.BookDoc) models.BookSummary {
	s := models.BookSummary{
		BookID:     b.BookID,
		Title:      b.Title,
		Synopsis:   b.Synopsis,
		CoverURL:   b.CoverURL,
		FileURL:    b.FileURL,
		TotalPages: b.TotalPages,
		Authors:    b.Authors,
		Categories: b.Categories,
		Languages:  b.Languages,
	}
	if s.Authors == nil {
		s.Authors = []models.Author{}
	}
	if s.Categories == nil {
		s.Categories = []models.Category{}
	}
	if s.Languages == nil {
		s.Languages = []models.Language{}
	}
	return s
}
