package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/kevinaaaquil/bookreview/models"
)

const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

// ErrNoVolume is returned when the provider knows no book for an ISBN.
var ErrNoVolume = errors.New("no volume found")

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

// MetadataClient looks up book details on the Google Books volumes API.
type MetadataClient struct {
	baseURL string
	http    *http.Client
}

// NewMetadataClient uses baseURL, or the public Google Books endpoint when empty.
func NewMetadataClient(baseURL string) *MetadataClient {
	if baseURL == "" {
		baseURL = DefaultGoogleBooksURL
	}
	return &MetadataClient{
		baseURL: baseURL,
		// short timeout so a hung provider does not hold the request
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// LookupISBN returns a draft book for isbn. It does not store anything.
func (c *MetadataClient) LookupISBN(ctx context.Context, isbn string) (*models.BookInput, error) {
	isbn = cleanISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode volumes: %w", err)
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, ErrNoVolume
	}
	return draftFromVolume(data.Items[0].VolumeInfo, isbn), nil
}

func draftFromVolume(vi volumeInfo, isbn string) *models.BookInput {
	draft := &models.BookInput{
		Title:           vi.Title,
		Author:          strings.Join(vi.Authors, ", "),
		Description:     strings.TrimSpace(vi.Description),
		Genre:           vi.Categories,
		ISBN:            isbn,
		PublicationYear: publishedYear(vi.PublishedDate),
		Publisher:       vi.Publisher,
	}
	if vi.Subtitle != "" {
		draft.Title += ": " + vi.Subtitle
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			draft.ISBN = id.Identifier
			break
		}
	}
	if draft.Genre == nil {
		draft.Genre = []string{}
	}
	// Open Library serves covers by ISBN without the captcha Google's image links hit.
	draft.CoverImage = openLibraryCoverURL(draft.ISBN, "L")
	return draft
}

// publishedYear takes the year from "2006", "2006-05" or "2006-05-01".
func publishedYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func cleanISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}

// openLibraryCoverURL returns a cover image URL. Size is S, M or L.
func openLibraryCoverURL(isbn, size string) string {
	clean := cleanISBN(isbn)
	if clean == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(clean) + "-" + size + ".jpg"
}
