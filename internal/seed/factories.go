// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"capstonehub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tune factory behavior.
type SeedOptions struct {
	// DryRun builds entities and assigns synthetic IDs without writing to the DB.
	DryRun bool
	// SkipBcrypt stores a plaintext password marker instead of a bcrypt hash.
	// Much faster for large seeds; never use outside development.
	SkipBcrypt bool
	// MaxDays bounds how far in the past generated CreatedAt values reach.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// emailForRole produces an address on the domain the role is allowed to use.
func emailForRole(role models.Role, first, last string) string {
	local := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, gofakeit.Number(10, 999)))
	switch role {
	case models.RoleDosen, models.RoleAdmin:
		return fmt.Sprintf("%s@ugm.ac.id", local)
	default:
		return fmt.Sprintf("%s@mail.ugm.ac.id", local)
	}
}

// CreateUser constructs and persists a sample `models.User` with the given
// role. Optional override functions may modify the generated user before
// saving.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	first, last := generateRandomName()
	user := &models.User{
		Name:       fmt.Sprintf("%s %s", first, last),
		Email:      emailForRole(role, first, last),
		Role:       role,
		IsVerified: true,
	}

	if role == models.RoleMahasiswa {
		user.NIM = fmt.Sprintf("%d/%d/TK/%05d",
			gofakeit.Number(20, 23), gofakeit.Number(400000, 499999), gofakeit.Number(1, 99999))
		user.Prodi = prodiNames[gofakeit.Number(0, len(prodiNames)-1)]
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: role=%s email=%s", user.Role, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup constructs and persists a group led by `leader` with the given
// members. The leader must not be repeated in members.
func (f *Factory) CreateGroup(leader *models.User, members []models.User, overrides ...func(*models.Group)) (*models.Group, error) {
	group := &models.Group{
		Name:     fmt.Sprintf("Kelompok %s %d", gofakeit.Adjective(), gofakeit.Number(1, 9999)),
		LeaderID: leader.ID,
		Members:  members,
	}

	for _, override := range overrides {
		override(group)
	}

	if f.opts.DryRun {
		f.nextID++
		group.ID = f.nextID
		log.Printf("[dry-run] CreateGroup: name=%q leader=%d members=%d", group.Name, group.LeaderID, len(group.Members))
		return group, nil
	}

	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// CreateCapstone constructs and persists a capstone proposal owned by the
// given alumni, with a generated Indonesian title and a realistic
// created_at spread.
func (f *Factory) CreateCapstone(owner *models.User, overrides ...func(*models.Capstone)) (*models.Capstone, error) {
	subject := capstoneSubjects[gofakeit.Number(0, len(capstoneSubjects)-1)]
	method := capstoneMethods[gofakeit.Number(0, len(capstoneMethods)-1)]

	capstone := &models.Capstone{
		Title:       fmt.Sprintf("%s %s", subject, method),
		Category:    capstoneCategories[gofakeit.Number(0, len(capstoneCategories)-1)],
		Abstract:    gofakeit.Paragraph(1, 3, 12, "\n"),
		OwnerID:     owner.ID,
		Status:      models.CapstoneStatusAvailable,
		ProposalURL: fmt.Sprintf("https://drive.google.com/file/d/%s/view", gofakeit.UUID()),
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	capstone.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(capstone)
	}

	if f.opts.DryRun {
		f.nextID++
		capstone.ID = f.nextID
		log.Printf("[dry-run] CreateCapstone: owner=%d title=%q", capstone.OwnerID, capstone.Title)
		return capstone, nil
	}

	if err := f.db.Create(capstone).Error; err != nil {
		return nil, err
	}
	return capstone, nil
}

// CreateRequest persists a pending request from `group` for `capstone`.
func (f *Factory) CreateRequest(group *models.Group, capstone *models.Capstone, overrides ...func(*models.Request)) (*models.Request, error) {
	request := &models.Request{
		GroupID:    group.ID,
		CapstoneID: capstone.ID,
		Status:     models.RequestStatusPending,
		Reason:     requestReasons[gofakeit.Number(0, len(requestReasons)-1)],
	}

	for _, override := range overrides {
		override(request)
	}

	if f.opts.DryRun {
		f.nextID++
		request.ID = f.nextID
		log.Printf("[dry-run] CreateRequest: group=%d capstone=%d status=%s", request.GroupID, request.CapstoneID, request.Status)
		return request, nil
	}

	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// CreateNotification persists a stored notification for the given user.
func (f *Factory) CreateNotification(user *models.User, requestID *uint, kind models.NotificationType, overrides ...func(*models.Notification)) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:    user.ID,
		RequestID: requestID,
		Type:      kind,
		Message:   gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(notification)
	}

	if f.opts.DryRun {
		f.nextID++
		notification.ID = f.nextID
		log.Printf("[dry-run] CreateNotification: user=%d type=%s", notification.UserID, notification.Type)
		return notification, nil
	}

	if err := f.db.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}
