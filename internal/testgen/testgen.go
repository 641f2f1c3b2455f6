// Package testgen creates throwaway e-book files for tests.
package testgen

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// GeneratePDF writes a minimal PDF file and returns its path.
func GeneratePDF(t *testing.T, dir, filename string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	content := "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write PDF file: %v", err)
	}
	return path
}

// GenerateEPUB writes a minimal EPUB container and returns its path. The
// archive has the uncompressed mimetype entry first, which is what content
// sniffers look for.
func GenerateEPUB(t *testing.T, dir, filename string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create EPUB file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to create mimetype entry: %v", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("failed to write mimetype entry: %v", err)
	}

	container, err := zw.Create("META-INF/container.xml")
	if err != nil {
		t.Fatalf("failed to create container.xml: %v", err)
	}
	if _, err := container.Write([]byte(`<?xml version="1.0"?><container version="1.0"/>`)); err != nil {
		t.Fatalf("failed to write container.xml: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finalize EPUB file: %v", err)
	}
	return path
}
