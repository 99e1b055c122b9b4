package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Document mirrors a document record.
type Document struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	TagString   string   `json:"tag_string"`
	FilePath    string   `json:"file_path"`
	FileType    string   `json:"file_type"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Highlights  []string `json:"highlights,omitempty"`
}

// Tags splits TagString on commas.
func (d Document) Tags() []string {
	return splitTags(d.TagString)
}

// ParsedCreatedAt returns CreatedAt as time.Time when it parses.
func (d Document) ParsedCreatedAt() time.Time {
	return parseTime(d.CreatedAt)
}

// ParsedUpdatedAt returns UpdatedAt as time.Time when it parses.
func (d Document) ParsedUpdatedAt() time.Time {
	return parseTime(d.UpdatedAt)
}

// Tag is a document tag.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DocumentPage is one page of search results.
type DocumentPage struct {
	Total int
	Items []Document
}

// AccessToken mirrors the login response.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DecodeTags reads a tag list. It accepts a bare array or an object wrapping
// the array under "data", "tags" or "items"; array elements may be tag
// objects or plain names.
func DecodeTags(r *Response) ([]Tag, error) {
	if r == nil {
		return nil, fmt.Errorf("response is nil")
	}
	list, err := findArray(r.Body, "data", "tags", "items")
	if err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	tags := make([]Tag, 0, len(list))
	for _, el := range list {
		switch {
		case el.Type == gjson.String:
			tags = append(tags, Tag{Name: el.String()})
		case el.IsObject():
			tags = append(tags, Tag{
				ID:   el.Get("id").Int(),
				Name: el.Get("name").String(),
			})
		}
	}
	return tags, nil
}

// DecodeDocumentPage reads a result page. Items are looked up under "items",
// "results", "documents" or "data"; a total falls back to the item count.
// Search hits that nest the record under "document" or "_source" are
// flattened.
func DecodeDocumentPage(r *Response) (DocumentPage, error) {
	if r == nil {
		return DocumentPage{}, fmt.Errorf("response is nil")
	}
	list, err := findArray(r.Body, "items", "results", "documents", "data")
	if err != nil {
		return DocumentPage{}, fmt.Errorf("decode documents: %w", err)
	}
	page := DocumentPage{Items: make([]Document, 0, len(list))}
	for _, el := range list {
		doc, err := documentFrom(el)
		if err != nil {
			return DocumentPage{}, fmt.Errorf("decode documents: %w", err)
		}
		page.Items = append(page.Items, doc)
	}

	total := gjson.GetBytes(r.Body, "total")
	if total.Type == gjson.JSON {
		// Elasticsearch style {"value": n}
		total = total.Get("value")
	}
	if total.Exists() {
		page.Total = int(total.Int())
	} else {
		page.Total = len(page.Items)
	}
	return page, nil
}

// DecodeDocument reads a single document, unwrapping "data" when present.
func DecodeDocument(r *Response) (Document, error) {
	if r == nil {
		return Document{}, fmt.Errorf("response is nil")
	}
	if !gjson.ValidBytes(r.Body) {
		return Document{}, fmt.Errorf("decode document: invalid json")
	}
	root := gjson.ParseBytes(r.Body)
	if data := root.Get("data"); data.IsObject() {
		root = data
	}
	if !root.IsObject() {
		return Document{}, fmt.Errorf("decode document: expected object")
	}
	doc, err := documentFrom(root)
	if err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// DecodeAccessToken reads the login response.
func DecodeAccessToken(r *Response) (AccessToken, error) {
	var tok AccessToken
	if err := r.Decode(&tok); err != nil {
		return AccessToken{}, err
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return AccessToken{}, fmt.Errorf("decode access token: access_token missing")
	}
	return tok, nil
}

func findArray(body []byte, keys ...string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array(), nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("expected array or object")
	}
	for _, key := range keys {
		if v := root.Get(key); v.IsArray() {
			return v.Array(), nil
		}
	}
	return nil, nil
}

func documentFrom(el gjson.Result) (Document, error) {
	src := el
	for depth := 0; depth < 2; depth++ {
		descended := false
		for _, wrapper := range []string{"_source", "document"} {
			if inner := src.Get(wrapper); inner.IsObject() {
				src = inner
				descended = true
				break
			}
		}
		if !descended {
			break
		}
	}

	var doc Document
	if err := json.Unmarshal([]byte(src.Raw), &doc); err != nil {
		// ids and tags come in several shapes; fall back to field-wise reads
		doc = Document{
			Title:       src.Get("title").String(),
			Description: src.Get("description").String(),
			Content:     src.Get("content").String(),
			TagString:   src.Get("tag_string").String(),
			FilePath:    src.Get("file_path").String(),
			FileType:    src.Get("file_type").String(),
			CreatedAt:   src.Get("created_at").String(),
			UpdatedAt:   src.Get("updated_at").String(),
		}
	}

	if doc.ID == 0 {
	lookup:
		for _, key := range []string{"id", "document_id"} {
			for _, v := range []gjson.Result{el.Get(key), el.Get("_source." + key), src.Get(key)} {
				if id, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
					doc.ID = id
					break lookup
				}
			}
		}
	}
	if doc.TagString == "" {
		if tags := src.Get("tags"); tags.IsArray() {
			var names []string
			for _, t := range tags.Array() {
				if t.IsObject() {
					names = append(names, t.Get("name").String())
				} else {
					names = append(names, t.String())
				}
			}
			doc.TagString = strings.Join(names, ",")
		} else if tags.Type == gjson.String {
			doc.TagString = tags.String()
		}
	}
	if len(doc.Highlights) == 0 {
		el.Get("highlight").ForEach(func(_, v gjson.Result) bool {
			for _, frag := range v.Array() {
				doc.Highlights = append(doc.Highlights, frag.String())
			}
			return true
		})
	}
	if doc.ID == 0 && doc.Title == "" && doc.Content == "" {
		return Document{}, fmt.Errorf("record has neither id nor title")
	}
	return doc, nil
}

func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
