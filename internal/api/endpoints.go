package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Requester is the transport the endpoint methods call through. *Client
// implements it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	PostForm(ctx context.Context, path string, form url.Values) (*Response, error)
}

var _ Requester = (*Client)(nil)

// Endpoint paths relative to the base URL.
const (
	PathNewsTags       = "/api/documentapi/taglist"
	PathTags           = "/api/tagapi/tags/"
	PathDocumentList   = "/api/documentapi/list"
	PathDocumentPrefix = "/api/documentapi/documents/"
	PathRelatedSearch  = "/api/documentapi/es_search_related"
	PathDefaultSearch  = "/api/documentapi/default_search"
	PathLogin          = "/api/auth/token"
)

// paramTagList is the list endpoint's comma-joined tag parameter. Its commas
// travel unescaped.
const paramTagList = "taglist"

// RelatedSearchFields is the fixed set of index fields a related-content
// search looks in.
var RelatedSearchFields = []string{"document.title", "document.content", "fragments.content"}

// Endpoints maps application intents onto single HTTP calls. Every method
// issues exactly one request and returns its result untouched: no retries,
// no caching, no validation.
type Endpoints struct {
	r Requester
}

// NewEndpoints wraps r.
func NewEndpoints(r Requester) *Endpoints {
	return &Endpoints{r: r}
}

// SearchParams shapes a document list query.
type SearchParams struct {
	Keyword   string
	Tags      []string
	StartDate string
	EndDate   string
	Page      int
	PageSize  int
}

// Values renders p as the list endpoint's query. Tags are comma joined and
// empty tags yield an empty taglist; unset dates are omitted.
func (p SearchParams) Values() url.Values {
	values := url.Values{}
	values.Set("keyword", p.Keyword)
	values.Set(paramTagList, joinTags(p.Tags))
	if p.StartDate != "" {
		values.Set("startDate", p.StartDate)
	}
	if p.EndDate != "" {
		values.Set("endDate", p.EndDate)
	}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("pageSize", strconv.Itoa(p.PageSize))
	return values
}

// RelatedQuery shapes a related-content search, which travels as a JSON body.
type RelatedQuery struct {
	Query      string
	PageSize   int
	PageNumber int
}

type relatedBody struct {
	Query      string   `json:"query"`
	PageSize   int      `json:"page_size"`
	PageNumber int      `json:"page_number"`
	SearchIn   []string `json:"search_in"`
}

// GetNewsTags lists the tags attached to documents.
func (e *Endpoints) GetNewsTags(ctx context.Context) (*Response, error) {
	return e.r.Get(ctx, PathNewsTags, nil)
}

// GetTags lists tags from the tag service.
func (e *Endpoints) GetTags(ctx context.Context) (*Response, error) {
	return e.r.Get(ctx, PathTags, nil)
}

// SearchDocList filters documents by keyword, tags and date range.
func (e *Endpoints) SearchDocList(ctx context.Context, p SearchParams) (*Response, error) {
	return e.r.Get(ctx, PathDocumentList, p.Values())
}

// GetPdfDetail fetches one document. id is used verbatim as the last path
// segment.
func (e *Endpoints) GetPdfDetail(ctx context.Context, id string) (*Response, error) {
	return e.r.Get(ctx, PathDocumentPrefix+id, nil)
}

// SearchRelated runs a full-text search over document titles, bodies and
// page fragments.
func (e *Endpoints) SearchRelated(ctx context.Context, q RelatedQuery) (*Response, error) {
	fields := make([]string, len(RelatedSearchFields))
	copy(fields, RelatedSearchFields)
	return e.r.Post(ctx, PathRelatedSearch, relatedBody{
		Query:      q.Query,
		PageSize:   q.PageSize,
		PageNumber: q.PageNumber,
		SearchIn:   fields,
	})
}

// DefaultSearch runs the server's default ranking for query.
func (e *Endpoints) DefaultSearch(ctx context.Context, query string, pageNumber, pageSize int) (*Response, error) {
	values := url.Values{}
	values.Set("query", query)
	values.Set("page_number", strconv.Itoa(pageNumber))
	values.Set("page_size", strconv.Itoa(pageSize))
	return e.r.Get(ctx, PathDefaultSearch, values)
}

// Login exchanges a username and password for an access token using the
// OAuth2 password form.
func (e *Endpoints) Login(ctx context.Context, username, password string) (*Response, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	return e.r.PostForm(ctx, PathLogin, form)
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return strings.Join(tags, ",")
}
