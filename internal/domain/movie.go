package domain

import (
	"strings"
	"time"
)

// Movie is a catalog entry. Wire names follow the backend relation (filmes).
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"titulo"`
	Genre       string    `json:"genero"`
	Year        int       `json:"ano"`
	Description string    `json:"descricao"`
	ImageURL    string    `json:"imagem"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

const (
	minMovieYear = 1888
	maxMovieYear = 2100
)

// MovieFields holds the admin-editable attributes of a movie.
type MovieFields struct {
	Title       string `json:"titulo"`
	Genre       string `json:"genero"`
	Year        int    `json:"ano"`
	Description string `json:"descricao"`
	ImageURL    string `json:"imagem"`
}

// Normalize trims surrounding whitespace from every text field.
func (f MovieFields) Normalize() MovieFields {
	return MovieFields{
		Title:       strings.TrimSpace(f.Title),
		Genre:       strings.TrimSpace(f.Genre),
		Year:        f.Year,
		Description: strings.TrimSpace(f.Description),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}
}

// Validate checks the fields an admin form must provide.
func (f MovieFields) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, FieldError{Field: "titulo", Message: "required"})
	}
	if f.Year < minMovieYear || f.Year > maxMovieYear {
		errs = append(errs, FieldError{Field: "ano", Message: "must be between 1888 and 2100"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
