package models

// Vocabularios globales. Los ids son estables y el recomendador los
// recorre en orden ascendente para armar el vector de features.

type Category struct {
	CategoryID int    `json:"categoryId" bson:"categoryId"`
	Name       string `json:"name" bson:"name"`
}

type Language struct {
	LanguageID int    `json:"languageId" bson:"languageId"`
	Name       string `json:"name" bson:"name"`
}

// Level es ordinal: 1=Beginner, 2=Intermediate, 3=Advanced.
type Level struct {
	LevelID int    `json:"levelId" bson:"levelId"`
	Name    string `json:"name" bson:"name"`
}

const MaxLevel = 3

// DefaultLevels se siembran al arrancar si la colección está vacía.
var DefaultLevels = []Level{
	{LevelID: 1, Name: "Beginner"},
	{LevelID: 2, Name: "Intermediate"},
	{LevelID: 3, Name: "Advanced"},
}

type Author struct {
	AuthorID int    `json:"authorId" bson:"authorId"`
	Name     string `json:"name" bson:"name"`
}

type Publisher struct {
	PublisherID int    `json:"publisherId" bson:"publisherId"`
	Name        string `json:"name" bson:"name"`
}
