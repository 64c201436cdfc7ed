// Command main runs the database seeder for CapstoneHub.
package main

import (
	"flag"
	"log"

	"capstonehub/internal/config"
	"capstonehub/internal/database"
	"capstonehub/internal/seed"
)

func main() {
	// Parse command line flags
	numStudents := flag.Int("students", 40, "Number of mahasiswa accounts to create")
	numAlumni := flag.Int("alumni", 10, "Number of alumni accounts to create")
	numDosen := flag.Int("dosen", 6, "Number of dosen accounts to create")
	numCapstones := flag.Int("capstones", 20, "Number of capstone proposals to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d students, %d alumni, %d dosen, %d capstones, clean=%v\n",
		*numStudents, *numAlumni, *numDosen, *numCapstones, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumStudents:  *numStudents,
		NumAlumni:    *numAlumni,
		NumDosen:     *numDosen,
		NumCapstones: *numCapstones,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	log.Println("📧 All seeded users have the password: password123")
}
