package seed

import (
	"log"

	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumBoards   int
	NumFeedback int
	ShouldClean bool
}

// defaultTags is the starter vocabulary every seeded database gets.
var defaultTags = []string{
	"bug", "feature", "ux", "performance", "documentation",
	"mobile", "api", "security", "accessibility", "integrations",
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all domain rows. Join tables go first.
func (s *Seeder) ClearAll() error {
	stmts := []string{
		"DELETE FROM feedback_upvotes",
		"DELETE FROM feedback_tags",
		"DELETE FROM board_members",
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	for _, model := range []any{
		&models.Comment{}, &models.Feedback{}, &models.Tag{},
		&models.Board{}, &models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	log.Println("Database cleared")
	return nil
}

// Run seeds users, boards, tags, feedback, comments and votes.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	// One admin and one moderator, the rest contributors.
	admin, err := s.factory.CreateUser(models.RoleAdmin)
	if err != nil {
		return err
	}
	moderator, err := s.factory.CreateUser(models.RoleModerator)
	if err != nil {
		return err
	}
	users := []*models.User{admin, moderator}
	for i := 2; i < opts.NumUsers; i++ {
		u, err := s.factory.CreateUser(models.RoleContributor)
		if err != nil {
			return err
		}
		users = append(users, u)
	}
	log.Printf("Seeded %d users (admin: %s, moderator: %s)", len(users), admin.Username, moderator.Username)

	var tags []*models.Tag
	for _, name := range defaultTags {
		t, err := s.factory.CreateTag(name)
		if err != nil {
			return err
		}
		tags = append(tags, t)
	}

	// Every third board is private with a handful of members.
	var boards []*models.Board
	for i := 0; i < opts.NumBoards; i++ {
		visibility := models.VisibilityPublic
		if i%3 == 2 {
			visibility = models.VisibilityPrivate
		}
		b, err := s.factory.CreateBoard(visibility)
		if err != nil {
			return err
		}
		boards = append(boards, b)

		memberCount := 3 + s.factory.rng.Intn(5)
		for j := 0; j < memberCount && j < len(users); j++ {
			if err := s.factory.AddMember(b, users[s.factory.rng.Intn(len(users))]); err != nil {
				return err
			}
		}
	}
	log.Printf("Seeded %d boards", len(boards))

	for i := 0; i < opts.NumFeedback; i++ {
		board := boards[s.factory.rng.Intn(len(boards))]
		author := users[s.factory.rng.Intn(len(users))]
		fb, err := s.factory.CreateFeedback(board, author)
		if err != nil {
			return err
		}

		for t := 0; t < s.factory.rng.Intn(3); t++ {
			if err := s.factory.AttachTag(fb, tags[s.factory.rng.Intn(len(tags))]); err != nil {
				return err
			}
		}
		for v := 0; v < s.factory.rng.Intn(8); v++ {
			if err := s.factory.Upvote(fb, users[s.factory.rng.Intn(len(users))]); err != nil {
				return err
			}
		}
		for cm := 0; cm < s.factory.rng.Intn(4); cm++ {
			if _, err := s.factory.CreateComment(fb, users[s.factory.rng.Intn(len(users))]); err != nil {
				return err
			}
		}
	}
	log.Printf("Seeded %d feedback items", opts.NumFeedback)

	return nil
}
