package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sharkweb/boardsite/internal/logging"
	authmw "github.com/sharkweb/boardsite/internal/middleware/auth"
	"github.com/sharkweb/boardsite/internal/mykafka"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/service"
	"github.com/sharkweb/boardsite/internal/service/search"
	"github.com/sharkweb/boardsite/internal/transport"
)

type BoardHTTP struct {
	Svc    *service.BoardService
	Events *mykafka.Producer
	Search *search.Service
}

func (h *BoardHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_list")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), service.DefaultPageSize)

	total, items, err := h.Svc.GetBoards(ctx, page, size)
	if err != nil {
		l.Error("board_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list boards")
	}

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusOK,
		Message: "boards listed",
		Data: map[string]any{
			"boards":      transport.ToBoardResponses(items),
			"page":        page,
			"size":        size,
			"total":       total,
			"total_pages": (total + int64(size) - 1) / int64(size),
		},
	})
}

// Mine lists the caller's own boards.
func (h *BoardHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_mine")
	current := authmw.CurrentUser(c)

	items, err := h.Svc.GetBoardsByAuthor(ctx, current.ID)
	if err != nil {
		l.Error("board_mine_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list boards")
	}
	for i := range items {
		items[i].Author = current
	}

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusOK,
		Message: "boards listed",
		Data:    transport.ToBoardResponses(items),
	})
}

func (h *BoardHTTP) Detail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_detail")

	id, err := parseBID(c)
	if err != nil {
		return err
	}

	board, err := h.Svc.GetBoard(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "board not found")
		}
		l.Error("board_detail_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get board")
	}

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusOK,
		Message: "board found",
		Data:    transport.ToBoardResponse(board),
	})
}

func (h *BoardHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_create")
	current := authmw.CurrentUser(c)

	var req transport.BoardRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("board_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	board, err := h.Svc.CreateBoard(ctx, req.Title, req.Content, current)
	if err != nil {
		l.Error("board_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create board")
	}

	h.index(c, board.ID)
	h.publish(c, fmt.Sprint(board.ID), map[string]any{
		"type":    "board_created",
		"bid":     board.ID,
		"user_id": current.ID,
	})

	return c.JSON(http.StatusCreated, transport.Response{
		Status:  http.StatusCreated,
		Message: "board created",
		Data:    transport.ToBoardResponse(board),
	})
}

func (h *BoardHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_update")
	current := authmw.CurrentUser(c)

	id, err := parseBID(c)
	if err != nil {
		return err
	}

	var req transport.BoardRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("board_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	board, err := h.Svc.UpdateBoard(ctx, id, req.Title, req.Content, current)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "board not found")
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "only the author can update a board")
		default:
			l.Error("board_update_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update board")
		}
	}

	h.index(c, board.ID)
	h.publish(c, fmt.Sprint(board.ID), map[string]any{
		"type":    "board_updated",
		"bid":     board.ID,
		"user_id": current.ID,
	})

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusOK,
		Message: "board updated",
		Data:    transport.ToBoardResponse(board),
	})
}

func (h *BoardHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_delete")
	current := authmw.CurrentUser(c)

	id, err := parseBID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteBoard(ctx, id, current); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "board not found")
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "only the author can delete a board")
		default:
			l.Error("board_delete_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete board")
		}
	}

	if h.Search != nil {
		if err := h.Search.RemoveBoard(ctx, id); err != nil {
			l.Error("search_remove_failed", "bid", id, "error", err)
		}
	}
	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":    "board_deleted",
		"bid":     id,
		"user_id": current.ID,
	})

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusNoContent,
		Message: "board deleted",
	})
}

func (h *BoardHTTP) SearchBoards(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "board_search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), service.DefaultPageSize)

	total, docs, err := h.Search.Search(ctx, q, (page-1)*size, size)
	if err != nil {
		l.Error("board_search_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, transport.Response{
		Status:  http.StatusOK,
		Message: "search results",
		Data:    map[string]any{"total": total, "boards": docs},
	})
}

func (h *BoardHTTP) index(c echo.Context, id uint) {
	if h.Search == nil {
		return
	}
	ctx := c.Request().Context()
	board, err := h.Svc.GetBoard(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "bid", id, "error", err)
		return
	}
	if err := h.Search.IndexBoard(ctx, board); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "bid", id, "error", err)
	}
}

func (h *BoardHTTP) publish(c echo.Context, key string, event map[string]any) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.PublishEvent(ctx, "board_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event_publish_failed", "topic", "board_events", "error", err)
	}
}

func parseBID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("bid"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "bid must be a number")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}
