package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"facture-backend/internal/domain"
	"facture-backend/internal/render"
	"facture-backend/internal/repository"

	"github.com/google/uuid"
)

// DocumentStore persists rendered artifacts. Keys are opaque relative paths
// chosen by the caller.
type DocumentStore interface {
	Save(key string, content io.Reader) error
	Open(key string) (io.ReadCloser, error)
}

// FileStore keeps artifacts under a base directory on local disk.
type FileStore struct {
	base string
}

func NewFileStore(base string) (*FileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir %s: %w", base, err)
	}
	return &FileStore{base: base}, nil
}

func (s *FileStore) Save(key string, content io.Reader) error {
	path := filepath.Join(s.base, filepath.Clean(key))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if _, err := io.Copy(file, content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Open(key string) (io.ReadCloser, error) {
	path := filepath.Join(s.base, filepath.Clean(key))
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}

// GenerateDocument renders the invoice to an artifact and records its
// location. Drafts cannot be rendered; a draft number would look like a
// final document. Rendering happens outside any database transaction and a
// failure leaves the invoice untouched.
func (s *Service) GenerateDocument(ctx context.Context, accountID, invoiceID int64) (*domain.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.StatusDraft {
		return nil, domain.ErrInvalidInvoiceState
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.GetClient(ctx, accountID, invoice.ClientID)
	if err != nil {
		return nil, err
	}

	snapshot, err := render.BuildSnapshot(*account, *client, *invoice, nowFunc())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderingFailed, err)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(ctx, snapshot, &buf); err != nil {
		s.log.Error().Err(err).Str("number", invoice.InvoiceNumber).Msg("document rendering failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderingFailed, err)
	}

	key := fmt.Sprintf("%s-%s.%s", invoice.InvoiceNumber, uuid.NewString(), s.renderer.Extension())
	if err := s.store.Save(key, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderingFailed, err)
	}

	if err := s.repo.SetInvoiceDocumentPath(ctx, accountID, invoiceID, key); err != nil {
		return nil, err
	}
	invoice.DocumentPath = &key

	s.log.Info().
		Int64("account_id", accountID).
		Str("number", invoice.InvoiceNumber).
		Str("document", key).
		Msg("document generated")
	return invoice, nil
}

// OpenDocument streams a previously generated artifact.
func (s *Service) OpenDocument(ctx context.Context, accountID, invoiceID int64) (io.ReadCloser, string, error) {
	invoice, err := s.repo.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if invoice.DocumentPath == nil {
		return nil, "", repository.ErrNotFound
	}
	reader, err := s.store.Open(*invoice.DocumentPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", err
	}
	return reader, *invoice.DocumentPath, nil
}
