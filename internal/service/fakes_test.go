package service

import (
	"context"
	"slices"
	"sync"

	"biblioteca-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int]*models.UserDoc
}

func newMemUsers(us ...models.UserDoc) *memUsers {
	m := &memUsers{users: map[int]*models.UserDoc{}}
	for i := range us {
		u := us[i]
		m.users[u.UserID] = &u
	}
	return m
}

func (m *memUsers) find(pred func(*models.UserDoc) bool) *models.UserDoc {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if pred(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.UserDoc, error) {
	return m.find(func(u *models.UserDoc) bool { return u.Email == email }), nil
}

func (m *memUsers) FindByRegistration(_ context.Context, reg string) (*models.UserDoc, error) {
	return m.find(func(u *models.UserDoc) bool { return u.Registration == reg }), nil
}

func (m *memUsers) FindByID(_ context.Context, id int) (*models.UserDoc, error) {
	return m.find(func(u *models.UserDoc) bool { return u.UserID == id }), nil
}

func (m *memUsers) GetNextUserID(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 1
	for id := range m.users {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

func (m *memUsers) Insert(_ context.Context, u *models.UserDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]models.UserDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserDoc
	for _, u := range m.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b models.UserDoc) int { return a.UserID - b.UserID })
	return page(out, limit, offset), nil
}

func (m *memUsers) ListActive(ctx context.Context) ([]models.UserDoc, error) {
	all, _ := m.List(ctx, 0, 0)
	return slices.DeleteFunc(all, func(u models.UserDoc) bool { return !u.IsActive() }), nil
}

func (m *memUsers) UpdateByID(_ context.Context, id int, update bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if st, ok := update["state"].(string); ok {
		u.State = st
	}
	if v, ok := update["name"].(string); ok {
		u.Name = v
	}
	if v, ok := update["email"].(string); ok {
		u.Email = v
	}
	if v, ok := update["phone"].(string); ok {
		u.Phone = v
	}
	return nil
}

func (m *memUsers) DeleteByID(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

func (m *memUsers) CountByLevel(_ context.Context, levelID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Preference != nil && u.Preference.LevelID != nil && *u.Preference.LevelID == levelID {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) SetPreference(_ context.Context, id int, p *models.PreferenceDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	cp := *p
	u.Preference = &cp
	return nil
}

func (m *memUsers) ClearPreference(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Preference = nil
	return nil
}

type memCatalog struct {
	categories []models.Category
	languages  []models.Language
	levels     []models.Level
	authors    []models.Author
	publishers []models.Publisher
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		categories: []models.Category{{CategoryID: 1, Name: "Ciencia"}, {CategoryID: 2, Name: "Historia"}},
		languages:  []models.Language{{LanguageID: 1, Name: "Español"}},
		levels:     slices.Clone(models.DefaultLevels),
	}
}

func (c *memCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return c.categories, nil
}

func (c *memCatalog) ListLanguages(context.Context) ([]models.Language, error) {
	return c.languages, nil
}

func (c *memCatalog) ListLevels(context.Context) ([]models.Level, error) { return c.levels, nil }

func (c *memCatalog) FindLevel(_ context.Context, id int) (*models.Level, error) {
	for _, l := range c.levels {
		if l.LevelID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (c *memCatalog) InsertCategory(_ context.Context, name string) (*models.Category, error) {
	cat := models.Category{CategoryID: len(c.categories) + 1, Name: name}
	c.categories = append(c.categories, cat)
	return &cat, nil
}

func (c *memCatalog) InsertLanguage(_ context.Context, name string) (*models.Language, error) {
	l := models.Language{LanguageID: len(c.languages) + 1, Name: name}
	c.languages = append(c.languages, l)
	return &l, nil
}

func (c *memCatalog) InsertLevel(_ context.Context, name string) (*models.Level, error) {
	next := 1
	for _, l := range c.levels {
		if l.LevelID >= next {
			next = l.LevelID + 1
		}
	}
	l := models.Level{LevelID: next, Name: name}
	c.levels = append(c.levels, l)
	return &l, nil
}

func (c *memCatalog) UpdateLevel(_ context.Context, id int, name string) error {
	i := slices.IndexFunc(c.levels, func(l models.Level) bool { return l.LevelID == id })
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	c.levels[i].Name = name
	return nil
}

func (c *memCatalog) DeleteLevel(_ context.Context, id int) (bool, error) {
	i := slices.IndexFunc(c.levels, func(l models.Level) bool { return l.LevelID == id })
	if i < 0 {
		return false, nil
	}
	c.levels = slices.Delete(c.levels, i, i+1)
	return true, nil
}

func (c *memCatalog) SeedLevels(context.Context) error { return nil }

func (c *memCatalog) EnsureAuthor(_ context.Context, name string) (models.Author, error) {
	for _, a := range c.authors {
		if a.Name == name {
			return a, nil
		}
	}
	a := models.Author{AuthorID: len(c.authors) + 1, Name: name}
	c.authors = append(c.authors, a)
	return a, nil
}

func (c *memCatalog) EnsurePublisher(_ context.Context, name string) (models.Publisher, error) {
	for _, p := range c.publishers {
		if p.Name == name {
			return p, nil
		}
	}
	p := models.Publisher{PublisherID: len(c.publishers) + 1, Name: name}
	c.publishers = append(c.publishers, p)
	return p, nil
}

type memBooks struct {
	books []models.BookDoc
}

func (b *memBooks) GetByID(_ context.Context, id int) (*models.BookDoc, error) {
	for _, bk := range b.books {
		if bk.BookID == id {
			return &bk, nil
		}
	}
	return nil, nil
}

func (b *memBooks) GetNextBookID(context.Context) (int, error) { return len(b.books) + 1, nil }

func (b *memBooks) Insert(_ context.Context, bk *models.BookDoc) error {
	b.books = append(b.books, *bk)
	return nil
}

func (b *memBooks) Search(_ context.Context, _ string, _, _, limit, offset int) ([]models.BookDoc, error) {
	return page(b.books, limit, offset), nil
}

func (b *memBooks) Update(_ context.Context, id int, set bson.M) error {
	i := slices.IndexFunc(b.books, func(bk models.BookDoc) bool { return bk.BookID == id })
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	bk := &b.books[i]
	if v, ok := set["title"].(string); ok {
		bk.Title = v
	}
	if v, ok := set["totalPages"].(int); ok {
		bk.TotalPages = v
	}
	if v, ok := set["authors"].([]models.Author); ok {
		bk.Authors = v
	}
	if v, ok := set["categories"].([]models.Category); ok {
		bk.Categories = v
	}
	if v, ok := set["updatedAt"].(string); ok {
		bk.UpdatedAt = v
	}
	return nil
}

func (b *memBooks) Delete(_ context.Context, id int) (bool, error) {
	i := slices.IndexFunc(b.books, func(bk models.BookDoc) bool { return bk.BookID == id })
	if i < 0 {
		return false, nil
	}
	b.books = slices.Delete(b.books, i, i+1)
	return true, nil
}

type memReadings struct {
	items []models.ReadingDoc
}

func (r *memReadings) idx(userID, bookID int) int {
	return slices.IndexFunc(r.items, func(x models.ReadingDoc) bool { return x.UserID == userID && x.BookID == bookID })
}

func (r *memReadings) Insert(_ context.Context, rd *models.ReadingDoc) error {
	r.items = append(r.items, *rd)
	return nil
}

func (r *memReadings) Find(_ context.Context, userID, bookID int) (*models.ReadingDoc, error) {
	if i := r.idx(userID, bookID); i >= 0 {
		cp := r.items[i]
		return &cp, nil
	}
	return nil, nil
}

func (r *memReadings) ListByUser(_ context.Context, userID int, state string, limit, offset int) ([]models.ReadingDoc, error) {
	var out []models.ReadingDoc
	for _, x := range r.items {
		if x.UserID == userID && (state == "" || x.State == state) {
			out = append(out, x)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memReadings) Update(_ context.Context, userID, bookID int, set bson.M) error {
	i := r.idx(userID, bookID)
	if i < 0 {
		return mongo.ErrNoDocuments
	}
	r.items[i].PagesRead = set["pagesRead"].(int)
	r.items[i].State = set["state"].(string)
	return nil
}

func (r *memReadings) Delete(_ context.Context, userID, bookID int) (bool, error) {
	i := r.idx(userID, bookID)
	if i < 0 {
		return false, nil
	}
	r.items = slices.Delete(r.items, i, i+1)
	return true, nil
}

func (r *memReadings) deleteWhere(pred func(models.ReadingDoc) bool) int64 {
	before := len(r.items)
	r.items = slices.DeleteFunc(r.items, pred)
	return int64(before - len(r.items))
}

func (r *memReadings) DeleteByUser(_ context.Context, userID int) (int64, error) {
	return r.deleteWhere(func(x models.ReadingDoc) bool { return x.UserID == userID }), nil
}

func (r *memReadings) DeleteByBook(_ context.Context, bookID int) (int64, error) {
	return r.deleteWhere(func(x models.ReadingDoc) bool { return x.BookID == bookID }), nil
}

func (r *memReadings) Totals(_ context.Context, userID int) (int, int, error) {
	pages, count := 0, 0
	for _, x := range r.items {
		if x.UserID == userID {
			pages += x.PagesRead
			count++
		}
	}
	return pages, count, nil
}

type memHistory struct {
	mu   sync.Mutex
	recs []models.Recommendation
}

func (h *memHistory) Insert(_ context.Context, rec *models.Recommendation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, *rec)
	return nil
}

func (h *memHistory) FindByUser(_ context.Context, userID int, limit int64) ([]models.Recommendation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []models.Recommendation
	for i := len(h.recs) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if h.recs[i].UserID == userID {
			out = append(out, h.recs[i])
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
