package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/prefs"
)

// Backend is the part of the endpoint façade the views call.
type Backend interface {
	GetNewsTags(ctx context.Context) (*api.Response, error)
	SearchDocList(ctx context.Context, p api.SearchParams) (*api.Response, error)
	GetPdfDetail(ctx context.Context, id string) (*api.Response, error)
	SearchRelated(ctx context.Context, q api.RelatedQuery) (*api.Response, error)
	DefaultSearch(ctx context.Context, query string, pageNumber, pageSize int) (*api.Response, error)
}

var _ Backend = (*api.Endpoints)(nil)

// query is one search request issued from the search view.
type query struct {
	Mode     string
	Keyword  string
	Tags     []string
	Page     int
	PageSize int

	seq int
}

// Messages

type tagsMsg []api.Tag

type resultsMsg struct {
	Query query
	Page  api.DocumentPage
}

type detailMsg struct {
	ID       string
	Document api.Document
}

// failedMsg reports a call that did not produce data. The user-facing text
// arrives separately through the notification banner.
type failedMsg struct {
	Op  string
	ID  string // document id for detail failures
	Err error
}

// Commands

// initialLoadCmd fetches the tag list and the first default search page in
// parallel. Each half reports on its own; one failing does not discard the
// other, so the group is not tied to a cancelling context.
func initialLoadCmd(ctx context.Context, b Backend, pageSize int) tea.Cmd {
	return func() tea.Msg {
		var (
			g    errgroup.Group
			tags []api.Tag
			page api.DocumentPage
			tErr error
			pErr error
		)
		g.Go(func() error {
			resp, err := b.GetNewsTags(ctx)
			if err == nil {
				tags, err = api.DecodeTags(resp)
			}
			tErr = err
			return err
		})
		g.Go(func() error {
			resp, err := b.DefaultSearch(ctx, "", 1, pageSize)
			if err == nil {
				page, err = api.DecodeDocumentPage(resp)
			}
			pErr = err
			return err
		})

		q := query{Mode: prefs.ModeDefault, Page: 1, PageSize: pageSize}
		if err := g.Wait(); err == nil {
			return batchMsg{tagsMsg(tags), resultsMsg{Query: q, Page: page}}
		}

		var msgs batchMsg
		if tErr != nil {
			msgs = append(msgs, failedMsg{Op: "tags", Err: tErr})
		} else {
			msgs = append(msgs, tagsMsg(tags))
		}
		if pErr != nil {
			msgs = append(msgs, failedMsg{Op: "search", Err: pErr})
		} else {
			msgs = append(msgs, resultsMsg{Query: q, Page: page})
		}
		return msgs
	}
}

// batchMsg carries several messages produced by one command.
type batchMsg []tea.Msg

func searchCmd(ctx context.Context, b Backend, q query) tea.Cmd {
	return func() tea.Msg {
		var (
			resp *api.Response
			err  error
		)
		switch q.Mode {
		case prefs.ModeRelated:
			resp, err = b.SearchRelated(ctx, api.RelatedQuery{Query: q.Keyword, PageSize: q.PageSize, PageNumber: q.Page})
		case prefs.ModeDefault:
			resp, err = b.DefaultSearch(ctx, q.Keyword, q.Page, q.PageSize)
		default:
			resp, err = b.SearchDocList(ctx, api.SearchParams{
				Keyword:  q.Keyword,
				Tags:     q.Tags,
				Page:     q.Page,
				PageSize: q.PageSize,
			})
		}
		if err != nil {
			return failedMsg{Op: "search", Err: err}
		}
		page, err := api.DecodeDocumentPage(resp)
		if err != nil {
			return failedMsg{Op: "search", Err: err}
		}
		return resultsMsg{Query: q, Page: page}
	}
}

func detailCmd(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.GetPdfDetail(ctx, id)
		if err != nil {
			return failedMsg{Op: "detail", ID: id, Err: err}
		}
		doc, err := api.DecodeDocument(resp)
		if err != nil {
			return failedMsg{Op: "detail", ID: id, Err: err}
		}
		return detailMsg{ID: id, Document: doc}
	}
}
