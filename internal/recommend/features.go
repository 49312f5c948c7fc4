package recommend

import (
	"slices"

	"biblioteca-api/internal/models"
)

// valor de nivel cuando la preferencia no tiene nivel
const defaultLevelValue = 0.33

// Vocabulary es la foto de categorías, lenguajes y niveles con la que se
// arma el vector de features. El orden (id ascendente) define las columnas.
type Vocabulary struct {
	Categories []models.Category
	Languages  []models.Language
	Levels     []models.Level

	catIdx  map[int]int
	langIdx map[int]int
}

func NewVocabulary(categories []models.Category, languages []models.Language, levels []models.Level) Vocabulary {
	v := Vocabulary{
		Categories: slices.Clone(categories),
		Languages:  slices.Clone(languages),
		Levels:     slices.Clone(levels),
	}
	slices.SortFunc(v.Categories, func(a, b models.Category) int { return a.CategoryID - b.CategoryID })
	slices.SortFunc(v.Languages, func(a, b models.Language) int { return a.LanguageID - b.LanguageID })
	slices.SortFunc(v.Levels, func(a, b models.Level) int { return a.LevelID - b.LevelID })

	v.catIdx = make(map[int]int, len(v.Categories))
	for i, c := range v.Categories {
		v.catIdx[c.CategoryID] = i
	}
	v.langIdx = make(map[int]int, len(v.Languages))
	for i, l := range v.Languages {
		v.langIdx[l.LanguageID] = i
	}
	return v
}

// Dim = |categorías| + |lenguajes| + 1 (nivel).
func (v Vocabulary) Dim() int {
	return len(v.Categories) + len(v.Languages) + 1
}

func (v Vocabulary) CategoryIDs() []int {
	ids := make([]int, len(v.Categories))
	for i, c := range v.Categories {
		ids[i] = c.CategoryID
	}
	return ids
}

func (v Vocabulary) LanguageIDs() []int {
	ids := make([]int, len(v.Languages))
	for i, l := range v.Languages {
		ids[i] = l.LanguageID
	}
	return ids
}

// Features arma el vector del usuario: one-hot de categorías, one-hot de
// lenguajes y nivel/3. Sin preferencias devuelve todo en cero.
func (v Vocabulary) Features(u *models.UserDoc) []float64 {
	out := make([]float64, v.Dim())
	if u == nil || u.Preference == nil {
		return out
	}
	p := u.Preference
	nc := len(v.Categories)

	for _, id := range p.CategoryIDs {
		if i, ok := v.catIdx[id]; ok {
			out[i] = 1
		}
	}
	for _, id := range p.LanguageIDs {
		if i, ok := v.langIdx[id]; ok {
			out[nc+i] = 1
		}
	}

	level := defaultLevelValue
	if p.LevelID != nil && *p.LevelID > 0 {
		level = float64(*p.LevelID) / float64(models.MaxLevel)
	}
	out[len(out)-1] = level
	return out
}

// Labels traduce las preferencias del usuario a nombres.
func (v Vocabulary) Labels(u *models.UserDoc) models.PreferenceLabels {
	labels := models.PreferenceLabels{Categories: []string{}, Languages: []string{}}
	if u == nil || u.Preference == nil {
		return labels
	}
	p := u.Preference
	for _, id := range p.CategoryIDs {
		if i, ok := v.catIdx[id]; ok {
			labels.Categories = append(labels.Categories, v.Categories[i].Name)
		}
	}
	for _, id := range p.LanguageIDs {
		if i, ok := v.langIdx[id]; ok {
			labels.Languages = append(labels.Languages, v.Languages[i].Name)
		}
	}
	if p.LevelID != nil {
		for _, l := range v.Levels {
			if l.LevelID == *p.LevelID {
				name := l.Name
				labels.Level = &name
				break
			}
		}
	}
	return labels
}

// ExtractFeatures es la forma suelta de Vocabulary.Features.
func ExtractFeatures(u *models.UserDoc, categories []models.Category, languages []models.Language) []float64 {
	return NewVocabulary(categories, languages, nil).Features(u)
}
