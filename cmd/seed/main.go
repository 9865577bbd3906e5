// Command main runs the database seeder for Pulseboard.
package main

import (
	"flag"
	"log"

	"pulseboard/internal/config"
	"pulseboard/internal/database"
	"pulseboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numBoards := flag.Int("boards", 8, "Number of boards to create")
	numFeedback := flag.Int("feedback", 120, "Number of feedback items to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d boards, %d feedback items, clean=%v\n",
		*numUsers, *numBoards, *numFeedback, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:    *numUsers,
		NumBoards:   *numBoards,
		NumFeedback: *numFeedback,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
