package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ad/go-eduhub/internal/cert"
	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

// CertificateRenderer turns certificate data into a document blob. The
// service does not inspect the blob.
type CertificateRenderer interface {
	Render(data cert.Data) ([]byte, error)
}

type CertificateService struct {
	certRepo   *db.CertificateRepository
	userRepo   *db.UserRepository
	courseRepo *db.CourseRepository
	renderer   CertificateRenderer
	dir        string
}

func NewCertificateService(
	certRepo *db.CertificateRepository,
	userRepo *db.UserRepository,
	courseRepo *db.CourseRepository,
	renderer CertificateRenderer,
	dir string,
) *CertificateService {
	return &CertificateService{
		certRepo:   certRepo,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		renderer:   renderer,
		dir:        dir,
	}
}

// Issue renders and stores a certificate for a newly completed course. The
// unique (user, course) row makes a repeated call a no-op, so the at-most-
// once eligibility signal upstream plus this guard give exactly-once rows.
func (s *CertificateService) Issue(userID, courseID string, completedAt time.Time) (*models.Certificate, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}

	blob, err := s.renderer.Render(cert.Data{
		UserName:       user.FullName,
		CourseName:     course.Title,
		CompletionDate: completedAt.Format("January 2, 2006"),
		InstructorName: course.InstructorName,
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	certificate := &models.Certificate{
		ID:          uuid.NewString(),
		UserID:      userID,
		CourseID:    courseID,
		CourseTitle: course.Title,
		UserName:    user.FullName,
		IssuedAt:    completedAt,
	}
	if s.dir != "" {
		certificate.FilePath = filepath.Join(s.dir, certificate.ID+".pdf")
	}

	inserted, err := s.certRepo.Insert(certificate)
	if err != nil {
		return nil, fmt.Errorf("store certificate: %w", err)
	}
	if !inserted {
		log.Printf("[CERTIFICATES] certificate already issued for user=%s course=%s", userID, courseID)
		return nil, nil
	}

	if certificate.FilePath != "" {
		if err := os.WriteFile(certificate.FilePath, blob, 0o644); err != nil {
			return nil, fmt.Errorf("write certificate file: %w", err)
		}
	}

	log.Printf("[CERTIFICATES] issued certificate %s to user=%s for course=%q", certificate.ID, userID, course.Title)
	return certificate, nil
}
