package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sharkweb/boardsite/internal/models"
)

func (r *GormRepo) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.DB.WithContext(ctx).Preload("Author").First(&board, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (r *GormRepo) GetBoards(ctx context.Context, offset, limit int) (int64, []models.Board, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Board{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Board
	if err := r.DB.WithContext(ctx).Model(&models.Board{}).
		Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetBoardsByAuthor(ctx context.Context, authorID uint) ([]models.Board, error) {
	var items []models.Board
	if err := r.DB.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateBoard(ctx context.Context, b *models.Board) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *GormRepo) SaveBoard(ctx context.Context, b *models.Board) error {
	return r.DB.WithContext(ctx).Save(b).Error
}

func (r *GormRepo) DeleteBoard(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Board{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
