package services

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/ad/go-eduhub/internal/cert"
	"github.com/ad/go-eduhub/internal/db"
)

type stubRenderer struct {
	calls []cert.Data
}

func (r *stubRenderer) Render(data cert.Data) ([]byte, error) {
	r.calls = append(r.calls, data)
	return []byte("%PDF-stub"), nil
}

func TestIssueCertificateOnce(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	fx := seedCourse(t, queue)

	renderer := &stubRenderer{}
	service := NewCertificateService(
		db.NewCertificateRepository(queue),
		db.NewUserRepository(queue),
		db.NewCourseRepository(queue),
		renderer,
		"",
	)

	issuedAt := time.Now().UTC()
	certificate, err := service.Issue(fx.userID, fx.courseID, issuedAt)
	if err != nil {
		t.Fatal(err)
	}
	if certificate == nil {
		t.Fatal("Expected a certificate on first issue")
	}
	if certificate.UserID != fx.userID || certificate.CourseID != fx.courseID {
		t.Errorf("Certificate bound to wrong user/course: %+v", certificate)
	}
	if certificate.CourseTitle != "Go Basics" || certificate.UserName != "Test Learner" {
		t.Errorf("Expected denormalized names on the certificate, got %+v", certificate)
	}
	if len(renderer.calls) != 1 {
		t.Fatalf("Expected one render call, got %d", len(renderer.calls))
	}
	if renderer.calls[0].CompletionDate != issuedAt.Format("January 2, 2006") {
		t.Errorf("Unexpected completion date %q", renderer.calls[0].CompletionDate)
	}

	// The (user, course) row already exists; a second issue is a no-op.
	duplicate, err := service.Issue(fx.userID, fx.courseID, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if duplicate != nil {
		t.Errorf("Expected duplicate issue to return nil, got %+v", duplicate)
	}

	count, err := db.NewCertificateRepository(queue).CountByUser(fx.userID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one stored certificate, got %d", count)
	}
}

func TestIssueWritesFile(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()
	fx := seedCourse(t, queue)

	dir := t.TempDir()
	service := NewCertificateService(
		db.NewCertificateRepository(queue),
		db.NewUserRepository(queue),
		db.NewCourseRepository(queue),
		&stubRenderer{},
		dir,
	)

	certificate, err := service.Issue(fx.userID, fx.courseID, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if certificate.FilePath == "" {
		t.Fatal("Expected a file path when a directory is configured")
	}

	blob, err := os.ReadFile(certificate.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(blob, []byte("%PDF")) {
		t.Errorf("Expected a PDF blob on disk, got %q", blob[:min(len(blob), 8)])
	}
}
