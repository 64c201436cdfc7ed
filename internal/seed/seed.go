// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"capstonehub/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumStudents  int
	NumAlumni    int
	NumDosen     int
	NumCapstones int
	ShouldClean  bool
}

var (
	firstNames = []string{
		"Adi", "Agus", "Aisyah", "Andi", "Anisa", "Ari", "Ayu", "Bagus",
		"Bayu", "Bima", "Citra", "Dewi", "Dian", "Dimas", "Dini", "Eka",
		"Fajar", "Fitri", "Galih", "Gita", "Hadi", "Hana", "Indah", "Intan",
		"Irfan", "Joko", "Kartika", "Laras", "Lestari", "Lia", "Maya", "Mega",
		"Nadia", "Naufal", "Nia", "Novi", "Putra", "Putri", "Raka", "Rani",
		"Ratna", "Reza", "Rian", "Rina", "Rizky", "Sari", "Satria", "Sinta",
		"Siti", "Tri", "Wahyu", "Widya", "Yoga", "Yuni", "Yusuf", "Zahra",
	}

	lastNames = []string{
		"Pratama", "Saputra", "Wijaya", "Kusuma", "Santoso", "Nugroho",
		"Setiawan", "Hidayat", "Rahayu", "Lestari", "Utami", "Wibowo",
		"Hartono", "Susanto", "Purnama", "Firmansyah", "Ramadhan", "Maulana",
		"Siregar", "Nasution", "Hasibuan", "Simanjuntak", "Gunawan", "Halim",
		"Permata", "Anggraini", "Safitri", "Puspita", "Handayani", "Suryani",
	}

	prodiNames = []string{
		"Teknologi Informasi", "Teknik Elektro", "Ilmu Komputer",
		"Teknik Biomedis", "Sistem Informasi", "Teknik Fisika",
	}

	capstoneCategories = []string{
		"IoT", "Machine Learning", "Web Development", "Mobile Development",
		"Data Science", "Embedded Systems", "Computer Vision", "Smart City",
	}

	capstoneSubjects = []string{
		"Sistem Monitoring Kualitas Udara", "Aplikasi Manajemen Posyandu",
		"Platform Pelaporan Infrastruktur", "Dashboard Energi Gedung",
		"Deteksi Dini Penyakit Tanaman", "Sistem Antrian Puskesmas",
		"Pemetaan UMKM", "Prediksi Banjir", "Klasifikasi Sampah Otomatis",
		"Sistem Presensi Berbasis Wajah", "Monitoring Hidroponik",
		"Aplikasi Donor Darah", "Katalog Batik Digital",
		"Navigasi Dalam Gedung", "Deteksi Kantuk Pengemudi",
	}

	capstoneMethods = []string{
		"Berbasis IoT", "Menggunakan Deep Learning", "Berbasis Android",
		"Dengan Computer Vision", "Berbasis Web", "Menggunakan LoRaWAN",
		"Dengan Arsitektur Microservices", "Berbasis Citra Satelit",
	}

	groupNamePrefixes = []string{
		"Kelompok", "Tim", "Squad",
	}

	groupNameWords = []string{
		"Garuda", "Rajawali", "Cendrawasih", "Merapi", "Merbabu", "Sindoro",
		"Sumbing", "Arjuna", "Bima", "Gatotkaca", "Srikandi", "Antareja",
		"Nakula", "Sadewa", "Semeru", "Rinjani", "Krakatau", "Bromo",
	}

	requestReasons = []string{
		"Topik ini sesuai dengan minat riset kelompok kami.",
		"Kami memiliki pengalaman proyek serupa di mata kuliah sebelumnya.",
		"Anggota kelompok kami menguasai teknologi yang dibutuhkan topik ini.",
		"Kami tertarik melanjutkan penelitian ini ke tahap implementasi.",
		"Topik ini relevan dengan rencana tugas akhir seluruh anggota.",
	}
)

// Seed populates the database with demo campus data: users of every role,
// student groups, published capstone proposals, and a spread of requests
// in various review states.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding: %d students, %d alumni, %d dosen, %d capstones...",
		opts.NumStudents, opts.NumAlumni, opts.NumDosen, opts.NumCapstones)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db, SeedOptions{})

	students, alumni, dosen, err := createUsers(f, opts)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(students)+len(alumni)+len(dosen)+1)

	groups, err := createGroups(f, students)
	if err != nil {
		return fmt.Errorf("failed to create groups: %w", err)
	}
	log.Printf("✓ %d groups created", len(groups))

	capstones, err := createCapstones(f, alumni, dosen, opts.NumCapstones)
	if err != nil {
		return fmt.Errorf("failed to create capstones: %w", err)
	}
	log.Printf("✓ %d capstones created", len(capstones))

	requests, err := createRequests(f, groups, capstones)
	if err != nil {
		return fmt.Errorf("failed to create requests: %w", err)
	}
	log.Printf("✓ %d requests created", len(requests))

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		sql := `TRUNCATE TABLE notifications, requests, group_members, groups, capstone_co_authors, capstones, users RESTART IDENTITY CASCADE;`
		return db.Exec(sql).Error
	}
	// Non-Postgres fallback (sqlite in tests): delete in FK order.
	for _, table := range []string{"notifications", "requests", "group_members", "groups", "capstone_co_authors", "capstones", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func generateRandomName() (string, string) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	first := firstNames[r.Intn(len(firstNames))]
	last := lastNames[r.Intn(len(lastNames))]
	return first, last
}

// createUsers seeds one known account per role plus the requested counts.
// Email domains follow the campus convention: students and alumni live on
// the student mail domain, staff on the staff domain.
func createUsers(f *Factory, opts Options) (students, alumni, dosen []models.User, err error) {
	// Known accounts so developers can log in without digging through the DB.
	base := []struct {
		name  string
		email string
		role  models.Role
	}{
		{"Admin Capstone", "admin@ugm.ac.id", models.RoleAdmin},
		{"Dosen Demo", "dosen.demo@ugm.ac.id", models.RoleDosen},
		{"Alumni Demo", "alumni.demo@mail.ugm.ac.id", models.RoleAlumni},
		{"Mahasiswa Demo", "mahasiswa.demo@mail.ugm.ac.id", models.RoleMahasiswa},
	}
	for _, b := range base {
		u, createErr := f.CreateUser(b.role, func(u *models.User) {
			u.Name = b.name
			u.Email = b.email
		})
		if createErr != nil {
			// Likely already seeded; keep going.
			log.Printf("Skipping base user %s: %v", b.email, createErr)
			continue
		}
		switch b.role {
		case models.RoleMahasiswa:
			students = append(students, *u)
		case models.RoleAlumni:
			alumni = append(alumni, *u)
		case models.RoleDosen:
			dosen = append(dosen, *u)
		}
	}

	for i := len(students); i < opts.NumStudents; i++ {
		u, createErr := f.CreateUser(models.RoleMahasiswa)
		if createErr != nil {
			log.Printf("Failed to create student: %v", createErr)
			continue
		}
		students = append(students, *u)
	}
	for i := len(alumni); i < opts.NumAlumni; i++ {
		u, createErr := f.CreateUser(models.RoleAlumni)
		if createErr != nil {
			log.Printf("Failed to create alumni: %v", createErr)
			continue
		}
		alumni = append(alumni, *u)
	}
	for i := len(dosen); i < opts.NumDosen; i++ {
		u, createErr := f.CreateUser(models.RoleDosen)
		if createErr != nil {
			log.Printf("Failed to create dosen: %v", createErr)
			continue
		}
		dosen = append(dosen, *u)
	}
	return students, alumni, dosen, nil
}

// createGroups packs students into teams of 2-4 with the first student of
// each bucket as leader. Leftover students stay ungrouped, which mirrors
// real cohorts where not everyone has a team yet.
func createGroups(f *Factory, students []models.User) ([]models.Group, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	groups := make([]models.Group, 0, len(students)/2)

	i := 0
	for i < len(students)-1 {
		size := 2 + r.Intn(models.MaxGroupSize-1)
		if i+size > len(students) {
			size = len(students) - i
		}
		if size < 2 {
			break
		}
		leader := students[i]
		members := students[i+1 : i+size]

		g, err := f.CreateGroup(&leader, members, func(g *models.Group) {
			prefix := groupNamePrefixes[r.Intn(len(groupNamePrefixes))]
			word := groupNameWords[r.Intn(len(groupNameWords))]
			g.Name = fmt.Sprintf("%s %s %d", prefix, word, len(groups)+1)
		})
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
		i += size
	}
	return groups, nil
}

func createCapstones(f *Factory, alumni, dosen []models.User, count int) ([]models.Capstone, error) {
	if len(alumni) == 0 {
		return nil, nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	capstones := make([]models.Capstone, 0, count)

	for i := 0; i < count; i++ {
		owner := alumni[r.Intn(len(alumni))]
		c, err := f.CreateCapstone(&owner, func(c *models.Capstone) {
			// Roughly 70% of proposals have an assigned supervisor.
			if len(dosen) > 0 && r.Float32() < 0.7 {
				id := dosen[r.Intn(len(dosen))].ID
				c.DosenID = &id
			}
		})
		if err != nil {
			return nil, err
		}
		capstones = append(capstones, *c)
	}
	return capstones, nil
}

// createRequests wires groups to capstones while honoring the capacity
// rules the matching engine enforces: at most two active requests per
// group and three pending per capstone.
func createRequests(f *Factory, groups []models.Group, capstones []models.Capstone) ([]models.Request, error) {
	if len(groups) == 0 || len(capstones) == 0 {
		return nil, nil
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	requests := make([]models.Request, 0, len(groups))
	pendingPerCapstone := make(map[uint]int)

	for _, group := range groups {
		// Each group requests 0-2 capstones.
		wanted := r.Intn(3)
		seen := make(map[uint]bool)
		for n := 0; n < wanted; n++ {
			capstone := capstones[r.Intn(len(capstones))]
			if seen[capstone.ID] || pendingPerCapstone[capstone.ID] >= 3 {
				continue
			}
			seen[capstone.ID] = true

			req, err := f.CreateRequest(&group, &capstone)
			if err != nil {
				return nil, err
			}
			pendingPerCapstone[capstone.ID]++
			requests = append(requests, *req)
		}
	}
	return requests, nil
}
