package models

// BookDoc guarda autores, categorías y lenguajes embebidos como pares id+nombre.
type BookDoc struct {
	BookID     int        `json:"bookId" bson:"bookId"`
	Title      string     `json:"title" bson:"title"`
	TotalPages int        `json:"totalPages" bson:"totalPages"`
	Synopsis   string     `json:"synopsis,omitempty" bson:"synopsis,omitempty"`
	FileURL    string     `json:"fileUrl,omitempty" bson:"fileUrl,omitempty"`
	CoverURL   string     `json:"coverUrl,omitempty" bson:"coverUrl,omitempty"`
	Publisher  *Publisher `json:"publisher,omitempty" bson:"publisher,omitempty"`
	Authors    []Author   `json:"authors" bson:"authors"`
	Categories []Category `json:"categories" bson:"categories"`
	Languages  []Language `json:"languages" bson:"languages"`
	CreatedAt  string     `json:"createdAt" bson:"createdAt"`
	UpdatedAt  string     `json:"updatedAt" bson:"updatedAt"`
}

// Payload para crear un libro (ADMIN).
type BookCreateRequest struct {
	Title       string   `json:"title" validate:"required,max=300"`
	TotalPages  int      `json:"totalPages" validate:"required,gt=0"`
	Synopsis    string   `json:"synopsis,omitempty" validate:"max=2000"`
	FileURL     string   `json:"fileUrl,omitempty" validate:"omitempty,url"`
	CoverURL    string   `json:"coverUrl,omitempty" validate:"omitempty,url"`
	Publisher   string   `json:"publisher" validate:"required,max=200"`
	Authors     []string `json:"authors" validate:"required,min=1,dive,required,max=200"`
	CategoryIDs []int    `json:"categoryIds"`
	LanguageIDs []int    `json:"languageIds"`
}

// BookUpdateRequest: los campos nil no se tocan; las listas presentes
// reemplazan a las anteriores.
type BookUpdateRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	TotalPages  *int      `json:"totalPages,omitempty" validate:"omitempty,gt=0"`
	Synopsis    *string   `json:"synopsis,omitempty" validate:"omitempty,max=2000"`
	FileURL     *string   `json:"fileUrl,omitempty" validate:"omitempty,url"`
	CoverURL    *string   `json:"coverUrl,omitempty" validate:"omitempty,url"`
	Publisher   *string   `json:"publisher,omitempty" validate:"omitempty,min=1,max=200"`
	Authors     *[]string `json:"authors,omitempty" validate:"omitempty,min=1,dive,required,max=200"`
	CategoryIDs *[]int    `json:"categoryIds,omitempty"`
	LanguageIDs *[]int    `json:"languageIds,omitempty"`
}

// BookPrefill es lo que devuelve la búsqueda en Google Books para
// prellenar el formulario de alta.
type BookPrefill struct {
	GoogleID   string   `json:"googleId"`
	Title      string   `json:"title"`
	Synopsis   string   `json:"synopsis,omitempty"`
	TotalPages int      `json:"totalPages"`
	CoverURL   string   `json:"coverUrl,omitempty"`
	Publisher  string   `json:"publisher,omitempty"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
	Language   string   `json:"language,omitempty"`
	ISBN       string   `json:"isbn,omitempty"`
}
