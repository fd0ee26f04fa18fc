package handlers

import (
	"strings"

	"github.com/kevinaaaquil/bookreview/models"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type bookRequest struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Genre           []string `json:"genre" validate:"required,min=1,dive,required"`
	CoverImage      string   `json:"coverImage" validate:"omitempty,url"`
	ISBN            string   `json:"isbn"`
	PublicationYear int      `json:"publicationYear" validate:"omitempty,gte=1000,notfuture"`
	Publisher       string   `json:"publisher"`
}

func (b bookRequest) input() models.BookInput {
	return models.BookInput{
		Title:           strings.TrimSpace(b.Title),
		Author:          strings.TrimSpace(b.Author),
		Description:     b.Description,
		Genre:           b.Genre,
		CoverImage:      b.CoverImage,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
	}
}

// bookPatchRequest accepts any subset of the book fields.
type bookPatchRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=1"`
	Author          *string  `json:"author" validate:"omitempty,min=1"`
	Description     *string  `json:"description" validate:"omitempty,min=1"`
	Genre           []string `json:"genre" validate:"omitempty,min=1,dive,required"`
	CoverImage      *string  `json:"coverImage" validate:"omitempty,url|len=0"`
	ISBN            *string  `json:"isbn"`
	PublicationYear *int     `json:"publicationYear" validate:"omitempty,gte=1000,notfuture"`
	Publisher       *string  `json:"publisher"`
}

func (b bookPatchRequest) patch() models.BookPatch {
	return models.BookPatch{
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		Genre:           b.Genre,
		CoverImage:      b.CoverImage,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

type reviewPatchRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1"`
}
