package models

// Book is a catalog item. ViewsCount ranks popularity.
type Book struct {
	ID              int64  `db:"id" json:"id"`
	Title           string `db:"title" json:"title" validate:"notblank,max=512"`
	Author          string `db:"author" json:"author" validate:"max=256"`
	PublicationYear int    `db:"publication_year" json:"publicationYear"`
	ViewsCount      int64  `db:"views_count" json:"viewsCount" validate:"gte=0"`
}

// PageQuery carries the listing parameters. Missing values fall back to the
// first page of ten.
type PageQuery struct {
	PageNumber int `form:"pageNumber,default=1"`
	PageSize   int `form:"pageSize,default=10"`
}

// Page is one slice of the catalog ordered by popularity.
type Page struct {
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	Items      []string `json:"items"`
}
