package receipts

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSaveAndPath(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	content := []byte("%PDF-1.4 fake receipt")
	receipt, err := store.Save(bytes.NewReader(content), "facture.pdf", "application/pdf", int64(len(content)))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if receipt.OriginalName != "facture.pdf" || receipt.MimeType != "application/pdf" {
		t.Fatalf("metadata mismatch: %+v", receipt)
	}
	if receipt.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", receipt.Size, len(content))
	}
	if !strings.HasSuffix(receipt.Filename, ".pdf") {
		t.Fatalf("generated filename %q must keep the extension", receipt.Filename)
	}

	path, err := store.Path(receipt.Filename)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Fatal("saved content differs from upload")
	}
}

func TestSaveRejectsBadType(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Save(bytes.NewReader([]byte("gif")), "a.gif", "image/gif", 3); err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestSaveRejectsOversize(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Save(bytes.NewReader(nil), "a.pdf", "application/pdf", MaxSize+1); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge for declared size, got %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, name := range []string{"../etc/passwd", "a/b.pdf", "", ".hidden"} {
		if _, err := store.Path(name); err == nil {
			t.Errorf("Path(%q) must fail", name)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	receipt, err := store.Save(bytes.NewReader([]byte("x")), "a.png", "image/png", 1)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Remove(receipt.Filename)
	store.Remove(receipt.Filename) // second call must not panic or log fatally
	if _, err := store.Path(receipt.Filename); err == nil {
		t.Fatal("file must be gone after Remove")
	}
}
