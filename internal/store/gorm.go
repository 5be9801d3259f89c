package store

import (
	"context"
	"errors"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/models"
)

// gormStore backs the Store contract with a relational database. SQLite
// (pure-Go driver) is the zero-config default; postgres:// URLs switch the
// dialector.
type gormStore struct {
	db *gorm.DB
}

func openGorm(dbURL string) (Store, error) {
	var dialector gorm.Dialector

	if strings.HasPrefix(dbURL, "postgres://") {
		dialector = postgres.Open(dbURL)
		log.Info().Msg("connecting to PostgreSQL database")
	} else {
		dsn := strings.TrimPrefix(dbURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.Info().Str("path", dsn).Msg("connecting to SQLite database")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperr.Internal("open database", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.QAPair{}); err != nil {
		return nil, apperr.Internal("run migrations", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperr.Internal("access connection pool", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return &gormStore{db: db}, nil
}

func (s *gormStore) EnsureUser(ctx context.Context, externalID string) (models.User, error) {
	if externalID == "" {
		externalID = uuid.NewString()
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where(&models.User{ExternalUserID: externalID}).
		Attrs(&models.User{ID: uuid.NewString()}).
		FirstOrCreate(&user).Error
	if err != nil {
		// A concurrent first sight can slip between the lookup and the
		// insert; the unique index turns the loser's insert into a
		// conflict. The winner's row is authoritative.
		var existing models.User
		lookupErr := s.db.WithContext(ctx).
			Where("external_user_id = ?", externalID).
			First(&existing).Error
		if lookupErr == nil {
			return existing, nil
		}
		return models.User{}, apperr.Internal("ensure user", err)
	}
	return user, nil
}

func (s *gormStore) UserByExternalID(ctx context.Context, externalID string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("external_user_id = ?", externalID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Internal("look up user", err)
	}
	return user, nil
}

func (s *gormStore) CreatePost(ctx context.Context, title, content, ownerID string) (models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, apperr.Validation("content is required")
	}

	post := models.Post{
		ID:      uuid.NewString(),
		Title:   title,
		Content: content,
		OwnerID: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return models.Post{}, apperr.Internal("create post", err)
	}
	return post, nil
}

func (s *gormStore) ListPosts(ctx context.Context, ownerID string, page, pageSize int) ([]models.Post, int64, error) {
	page, pageSize = clampPage(page, pageSize)

	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, apperr.Internal("count posts", err)
	}

	var posts []models.Post
	err = s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, apperr.Internal("fetch posts", err)
	}
	return posts, total, nil
}

func (s *gormStore) PostByID(ctx context.Context, id string) (models.Post, error) {
	if err := checkID(id, "post id"); err != nil {
		return models.Post{}, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Post{}, apperr.NotFound("post not found")
	}
	if err != nil {
		return models.Post{}, apperr.Internal("fetch post", err)
	}
	return post, nil
}

func (s *gormStore) DeletePostsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var deleted int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&models.Post{}).Where("owner_id = ?", ownerID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.QAPair{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("owner_id = ?", ownerID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, apperr.Internal("delete posts", err)
	}
	return deleted, nil
}

func (s *gormStore) CreateQA(ctx context.Context, question, answer, postID string) (models.QAPair, error) {
	if err := checkID(postID, "post id"); err != nil {
		return models.QAPair{}, err
	}

	qa := models.QAPair{
		ID:       uuid.NewString(),
		Question: question,
		Answer:   answer,
		PostID:   postID,
	}
	if err := s.db.WithContext(ctx).Create(&qa).Error; err != nil {
		return models.QAPair{}, apperr.Internal("create qa pair", err)
	}
	return qa, nil
}

func (s *gormStore) ListQA(ctx context.Context, postID string) ([]models.QAPair, error) {
	if err := checkID(postID, "post id"); err != nil {
		return nil, err
	}

	var pairs []models.QAPair
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&pairs).Error
	if err != nil {
		return nil, apperr.Internal("fetch qa pairs", err)
	}
	return pairs, nil
}

func (s *gormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
