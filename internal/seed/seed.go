// Package seed fills the database with fake users, articles and likes for
// development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configures a seeding run.
type Options struct {
	Users    int
	Articles int
	// MaxLikesPerArticle bounds the random likes each article receives.
	MaxLikesPerArticle int
	// Clean deletes existing users (and everything they own) first.
	Clean bool
	// BcryptCost is used for the shared password digest; 0 means bcrypt.MinCost.
	BcryptCost int
	// RandSeed makes runs reproducible; 0 picks a random seed.
	RandSeed int64
}

// Result counts what a run created.
type Result struct {
	Users    int
	Articles int
	Likes    int
}

// Seeder writes generated records through gorm.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
}

// NewSeeder creates a seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	return &Seeder{db: db, opts: opts, faker: gofakeit.New(opts.RandSeed)}
}

// ClearAll removes every row in dependency order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.ArticleLike{}, &models.Session{}, &models.Article{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates users, then articles spread across them, then likes.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return res, err
		}
	}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return res, err
	}
	res.Users = len(users)

	articles, err := s.seedArticles(ctx, users)
	if err != nil {
		return res, err
	}
	res.Articles = len(articles)

	likes, err := s.seedLikes(ctx, users, articles)
	if err != nil {
		return res, err
	}
	res.Likes = likes

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", res.Users),
		slog.Int("articles", res.Articles),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	if s.opts.Users <= 0 {
		return nil, nil
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		users = append(users, &models.User{
			Name: s.faker.Name(),
			// The index prefix keeps emails unique across a run.
			Email:          fmt.Sprintf("user%d.%s", i+1, strings.ToLower(s.faker.Email())),
			PasswordDigest: string(digest),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, 100).Error; err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return users, nil
}

func (s *Seeder) seedArticles(ctx context.Context, users []*models.User) ([]*models.Article, error) {
	if s.opts.Articles <= 0 || len(users) == 0 {
		return nil, nil
	}

	articles := make([]*models.Article, 0, s.opts.Articles)
	for i := 0; i < s.opts.Articles; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), ".")
		if len(title) > 255 {
			title = title[:255]
		}
		articles = append(articles, &models.Article{
			UserID: author.ID,
			Title:  title,
			Body:   s.faker.Paragraph(s.faker.Number(1, 4), 4, 12, "\n\n"),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(articles, 100).Error; err != nil {
		return nil, fmt.Errorf("seed articles: %w", err)
	}
	return articles, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []*models.User, articles []*models.Article) (int, error) {
	if s.opts.MaxLikesPerArticle <= 0 || len(users) == 0 || len(articles) == 0 {
		return 0, nil
	}

	var likes []*models.ArticleLike
	for _, a := range articles {
		n := s.faker.Number(0, min(s.opts.MaxLikesPerArticle, len(users)))
		seen := make(map[uint]struct{}, n)
		for len(seen) < n {
			u := users[s.faker.Number(0, len(users)-1)]
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			likes = append(likes, &models.ArticleLike{UserID: u.ID, ArticleID: a.ID})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(likes, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("seed likes: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
