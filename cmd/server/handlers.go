package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/phrazzld/pagequeue/internal/task"
)

// contentSummary describes the captured document a task points at.
type contentSummary struct {
	Bytes int
	Title string
	Links int
}

// loadContent reads the page row and blob behind t and parses the HTML.
func loadContent(
	ctx context.Context,
	pages store.PageStore,
	blobs store.BlobStore,
	t *domain.WorkerTask,
) (*domain.Page, contentSummary, error) {
	page, err := pages.GetPageByURL(ctx, t.PageURL())
	if err != nil {
		return nil, contentSummary{}, fmt.Errorf("failed to load page: %w", err)
	}
	if page == nil {
		return nil, contentSummary{}, fmt.Errorf("page %s: %w", t.PageURL(), store.ErrPageNotFound)
	}

	content, err := blobs.GetFile(page.Path())
	if err != nil {
		return nil, contentSummary{}, fmt.Errorf("failed to read page content: %w", err)
	}
	if len(content) == 0 {
		return page, contentSummary{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, contentSummary{}, fmt.Errorf("failed to parse page content: %w", err)
	}

	return page, contentSummary{
		Bytes: len(content),
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: doc.Find("a[href]").Length(),
	}, nil
}

// newContentHandler returns the handler used for a processor type when no
// external processor is attached. It checks that the captured content of the
// task's page is still readable and parses as HTML.
func newContentHandler(
	taskType string,
	pages store.PageStore,
	blobs store.BlobStore,
	logger *slog.Logger,
) task.Handler {
	log := logger.With("component", "content_handler", "task_type", taskType)

	return task.HandlerFunc(func(ctx context.Context, t *domain.WorkerTask) error {
		page, summary, err := loadContent(ctx, pages, blobs, t)
		if err != nil {
			return err
		}

		log.Debug("page content ready",
			"task_id", t.ID(),
			"url", t.PageURL(),
			"bytes", summary.Bytes,
			"title", summary.Title,
			"links", summary.Links,
			"age", time.Since(time.UnixMilli(page.CreatedAt())).Round(time.Millisecond))
		return nil
	})
}
