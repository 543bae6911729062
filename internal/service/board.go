package service

import (
	"context"

	"github.com/sharkweb/boardsite/internal/logging"
	"github.com/sharkweb/boardsite/internal/models"
	"github.com/sharkweb/boardsite/internal/repo"
)

type BoardService struct {
	Repo *repo.GormRepo
}

const DefaultPageSize = 5

// GetBoards pages newest-first. Pages start at 1.
func (s *BoardService) GetBoards(ctx context.Context, page, size int) (int64, []models.Board, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return s.Repo.GetBoards(ctx, (page-1)*size, size)
}

func (s *BoardService) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	return s.Repo.GetBoard(ctx, id)
}

// GetBoardsByAuthor answers "boards of this user" as a store query; there is
// no in-memory collection to keep in sync.
func (s *BoardService) GetBoardsByAuthor(ctx context.Context, authorID uint) ([]models.Board, error) {
	return s.Repo.GetBoardsByAuthor(ctx, authorID)
}

func (s *BoardService) CreateBoard(ctx context.Context, title, content string, author *models.User) (*models.Board, error) {
	l := logging.FromContext(ctx).With("svc", "board.create")

	board := models.Board{
		Title:    title,
		Content:  content,
		AuthorID: author.ID,
	}
	if err := s.Repo.CreateBoard(ctx, &board); err != nil {
		l.Error("create_failed", "error", err)
		return nil, err
	}
	board.Author = author

	l.Info("board_created", "bid", board.ID, "author", author.Nickname)
	return &board, nil
}

func (s *BoardService) UpdateBoard(ctx context.Context, id uint, title, content string, current *models.User) (*models.Board, error) {
	l := logging.FromContext(ctx).With("svc", "board.update", "bid", id)

	board, err := s.Repo.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	// Only the author may modify a board. Author ids are compared by value.
	if board.AuthorID != current.ID {
		l.Warn("update_denied", "owner", board.AuthorID, "caller", current.ID)
		return nil, ErrForbidden
	}

	board.Title = title
	board.Content = content
	if err := s.Repo.SaveBoard(ctx, board); err != nil {
		l.Error("update_failed", "error", err)
		return nil, err
	}

	l.Info("board_updated", "editor", current.Nickname)
	return board, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, id uint, current *models.User) error {
	l := logging.FromContext(ctx).With("svc", "board.delete", "bid", id)

	board, err := s.Repo.GetBoard(ctx, id)
	if err != nil {
		return err
	}
	if board.AuthorID != current.ID {
		l.Warn("delete_denied", "owner", board.AuthorID, "caller", current.ID)
		return ErrForbidden
	}

	if err := s.Repo.DeleteBoard(ctx, id); err != nil {
		l.Error("delete_failed", "error", err)
		return err
	}

	l.Info("board_deleted", "deleter", current.Nickname)
	return nil
}
