package cert

import (
	"bytes"
	"testing"
)

func TestRenderProducesPDF(t *testing.T) {
	blob, err := NewRenderer().Render(Data{
		UserName:       "Jamie Doe",
		CourseName:     "Distributed Systems",
		CompletionDate: "August 30, 2026",
		InstructorName: "Prof. Chen",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(blob, []byte("%PDF")) {
		t.Errorf("Expected a PDF header, got %q", blob[:min(len(blob), 8)])
	}
	if len(blob) < 1000 {
		t.Errorf("Expected a non-trivial document, got %d bytes", len(blob))
	}
}

func TestRenderWithoutInstructor(t *testing.T) {
	blob, err := NewRenderer().Render(Data{
		UserName:       "Jamie Doe",
		CourseName:     "Distributed Systems",
		CompletionDate: "August 30, 2026",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) == 0 {
		t.Error("Expected a document even without an instructor line")
	}
}
