package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/videa-app/videa/internal/models"
)

// IdeaStore handles video idea database operations
type IdeaStore struct {
	db *DB
}

// NewIdeaStore creates a new idea store
func NewIdeaStore(db *DB) *IdeaStore {
	return &IdeaStore{db: db}
}

const ideaColumns = `id, user_id, title, concept, hashtags, virality_score, virality_justification,
       monetization_strategy, video_format, platform, content_type, trend_analysis,
       region, channel_inspirations, created_at`

// Create inserts a saved idea
func (s *IdeaStore) Create(ctx context.Context, idea models.VideoIdea) error {
	hashtags, err := json.Marshal(idea.Hashtags)
	if err != nil {
		return fmt.Errorf("failed to marshal hashtags: %w", err)
	}
	videoFormat, err := json.Marshal(idea.VideoFormat)
	if err != nil {
		return fmt.Errorf("failed to marshal video format: %w", err)
	}
	trendAnalysis, err := json.Marshal(idea.TrendAnalysis)
	if err != nil {
		return fmt.Errorf("failed to marshal trend analysis: %w", err)
	}

	query := `
		INSERT INTO video_ideas (id, user_id, title, concept, hashtags, virality_score, virality_justification,
		                         monetization_strategy, video_format, platform, content_type, trend_analysis,
		                         region, channel_inspirations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = s.db.ExecContext(ctx, query,
		idea.ID, idea.UserID, idea.Title, idea.Concept, hashtags,
		idea.ViralityScore, idea.ViralityJustification, idea.MonetizationStrategy,
		videoFormat, idea.Platform, idea.ContentType, trendAnalysis,
		idea.Region, idea.ChannelInspirations, idea.CreatedAt,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return ErrTableMissing
		}
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

// ListByUser returns a user's saved ideas, newest first
func (s *IdeaStore) ListByUser(ctx context.Context, userID string) ([]models.VideoIdea, error) {
	query := `SELECT ` + ideaColumns + ` FROM video_ideas WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, ErrTableMissing
		}
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	return scanIdeas(rows)
}

// Delete removes a user's idea and reports how many rows matched
func (s *IdeaStore) Delete(ctx context.Context, id, userID string) (int64, error) {
	query := `DELETE FROM video_ideas WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		if isUndefinedTable(err) {
			return 0, ErrTableMissing
		}
		return 0, fmt.Errorf("failed to delete idea: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return rows, nil
}

// Recent returns the most recently saved ideas across all users
func (s *IdeaStore) Recent(ctx context.Context, limit int) ([]models.VideoIdea, error) {
	query := `SELECT ` + ideaColumns + ` FROM video_ideas ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, ErrTableMissing
		}
		return nil, fmt.Errorf("failed to list recent ideas: %w", err)
	}
	defer rows.Close()

	return scanIdeas(rows)
}

func scanIdeas(rows *sql.Rows) ([]models.VideoIdea, error) {
	ideas := []models.VideoIdea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}

func scanIdea(rows *sql.Rows) (models.VideoIdea, error) {
	var idea models.VideoIdea
	var hashtags, videoFormat, trendAnalysis []byte

	err := rows.Scan(
		&idea.ID, &idea.UserID, &idea.Title, &idea.Concept, &hashtags,
		&idea.ViralityScore, &idea.ViralityJustification, &idea.MonetizationStrategy,
		&videoFormat, &idea.Platform, &idea.ContentType, &trendAnalysis,
		&idea.Region, &idea.ChannelInspirations, &idea.CreatedAt,
	)
	if err != nil {
		return models.VideoIdea{}, fmt.Errorf("failed to scan idea: %w", err)
	}

	if err := json.Unmarshal(hashtags, &idea.Hashtags); err != nil {
		return models.VideoIdea{}, fmt.Errorf("failed to unmarshal hashtags: %w", err)
	}
	if err := json.Unmarshal(videoFormat, &idea.VideoFormat); err != nil {
		return models.VideoIdea{}, fmt.Errorf("failed to unmarshal video format: %w", err)
	}
	if err := json.Unmarshal(trendAnalysis, &idea.TrendAnalysis); err != nil {
		return models.VideoIdea{}, fmt.Errorf("failed to unmarshal trend analysis: %w", err)
	}

	idea.IsSaved = true
	return idea, nil
}
