package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	libraryapp "github.com/webstack/backend/internal/application/library"
	"github.com/webstack/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Streaming media types accepted by GET /books
const (
	MIMENDJSON      = "application/x-ndjson"
	MIMEEventStream = "text/event-stream"
)

// StreamObserver counts books written to streaming responses
type StreamObserver interface {
	BookStreamed()
}

type nopStreamObserver struct{}

func (nopStreamObserver) BookStreamed() {}

// BookHandler handles book endpoints
type BookHandler struct {
	BaseHandler
	bookService *libraryapp.BookService
	observer    StreamObserver
}

// NewBookHandler creates a new BookHandler. observer may be nil.
func NewBookHandler(bookService *libraryapp.BookService, observer StreamObserver) *BookHandler {
	if observer == nil {
		observer = nopStreamObserver{}
	}
	return &BookHandler{bookService: bookService, observer: observer}
}

// List returns every book.
// The default is a JSON array. Accept: application/x-ndjson streams one document per line,
// and Accept: text/event-stream sends one server-sent event per book.
// GET /books
func (h *BookHandler) List(c *gin.Context) {
	switch c.NegotiateFormat(gin.MIMEJSON, MIMENDJSON, MIMEEventStream) {
	case MIMENDJSON:
		h.streamNDJSON(c)
		return
	case MIMEEventStream:
		h.streamEvents(c)
		return
	}

	books, err := h.bookService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, books)
}

func (h *BookHandler) streamNDJSON(c *gin.Context) {
	enc := json.NewEncoder(c.Writer)
	started := false

	err := h.bookService.Stream(c.Request.Context(), func(book libraryapp.BookResponse) error {
		if !started {
			c.Header("Content-Type", MIMENDJSON)
			c.Status(http.StatusOK)
			started = true
		}
		if err := enc.Encode(book); err != nil {
			return err
		}
		c.Writer.Flush()
		h.observer.BookStreamed()
		return nil
	})
	h.finishStream(c, MIMENDJSON, started, err)
}

func (h *BookHandler) streamEvents(c *gin.Context) {
	started := false

	err := h.bookService.Stream(c.Request.Context(), func(book libraryapp.BookResponse) error {
		started = true
		c.SSEvent("book", book)
		c.Writer.Flush()
		h.observer.BookStreamed()
		return nil
	})
	h.finishStream(c, MIMEEventStream, started, err)
}

// finishStream reports an error before the first write, or logs one that happens mid-stream
func (h *BookHandler) finishStream(c *gin.Context, contentType string, started bool, err error) {
	if err == nil {
		if !started {
			c.Header("Content-Type", contentType)
			c.Status(http.StatusOK)
			c.Writer.WriteHeaderNow()
		}
		return
	}
	if !started {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Warn("Book stream aborted", zap.Error(err))
	_ = c.Error(err)
	c.Abort()
}

// GetByID returns one book with its publisher.
// GET /books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	book, err := h.bookService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// Save creates a book, or replaces the one identified by the body id.
// PUT /book
func (h *BookHandler) Save(c *gin.Context) {
	var req libraryapp.SaveBookRequest
	if !h.bindJSON(c, &req) {
		return
	}

	book, err := h.bookService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// UpdateTitle changes only the title of a book.
// PATCH /books/:id/title
func (h *BookHandler) UpdateTitle(c *gin.Context) {
	var req libraryapp.UpdateTitleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	book, err := h.bookService.UpdateTitle(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// Delete removes a book and pulls it from its publisher.
// DELETE /books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.bookService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PublisherHandler handles publisher endpoints
type PublisherHandler struct {
	BaseHandler
	publisherService *libraryapp.PublisherService
}

// NewPublisherHandler creates a new PublisherHandler
func NewPublisherHandler(publisherService *libraryapp.PublisherService) *PublisherHandler {
	return &PublisherHandler{publisherService: publisherService}
}

// List returns every publisher.
// GET /publishers
func (h *PublisherHandler) List(c *gin.Context) {
	publishers, err := h.publisherService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, publishers)
}

// GetByID returns one publisher with the ids of its books.
// GET /publishers/:id
func (h *PublisherHandler) GetByID(c *gin.Context) {
	publisher, err := h.publisherService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, publisher)
}
