package usecase

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrOwnerNotFound    = errors.New("no person with that core id")
)

// UploadedFile is a file part received from a multipart form
type UploadedFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

type DocumentUsecase interface {
	Upload(ctx context.Context, sess session.Session, req *dto.UploadDocumentRequest, file UploadedFile) (*dto.DocumentResponse, error)
	ListByCoreID(ctx context.Context, sess session.Session, coreID string) (*dto.DocumentListResponse, error)
	Delete(ctx context.Context, sess session.Session, id uuid.UUID) error
}

type documentUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	documentRepo repository.DocumentRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	fileStorage  *storage.FileStorage
	access       personAccess
}

func NewDocumentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	documentRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	parentLinkRepo repository.ParentLinkRepository,
	auditService service.AuditService,
	fileStorage *storage.FileStorage,
) DocumentUsecase {
	return &documentUsecase{
		db:           db,
		log:          log,
		documentRepo: documentRepo,
		userRepo:     userRepo,
		auditService: auditService,
		fileStorage:  fileStorage,
		access:       personAccess{parentLinkRepo: parentLinkRepo},
	}
}

func (u *documentUsecase) Upload(ctx context.Context, sess session.Session, req *dto.UploadDocumentRequest, file UploadedFile) (*dto.DocumentResponse, error) {
	owner, err := u.ownerFor(ctx, sess, req.OwnerCoreID)
	if err != nil {
		return nil, err
	}

	uploader, err := u.userRepo.FindByID(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find uploader: %+v", err)
		return nil, err
	}
	if uploader == nil {
		return nil, ErrUserNotFound
	}

	stored, err := u.fileStorage.Save("documents/"+owner.CoreID, file.Name, file.Content)
	if err != nil {
		if !errors.Is(err, storage.ErrFileTooLarge) {
			u.log.Warnf("Failed to store document: %+v", err)
		}
		return nil, err
	}

	document := &entity.Document{
		OwnerCoreID:  owner.CoreID,
		Title:        strings.TrimSpace(req.Title),
		Category:     req.Category,
		FileName:     filepath.Base(file.Name),
		StorageKey:   stored.Key,
		FileURL:      stored.URL,
		FileSize:     stored.Size,
		MimeType:     contentTypeOf(file),
		UploaderID:   uploader.ID,
		UploaderName: uploader.Name,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.documentRepo.Create(ctx, tx, document); err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		u.log.Warnf("Failed to create document: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &sess.UserID, entity.AuditActionDocumentUpload, "document", document.ID.String(), converter.DocumentToResponse(document)); err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"document_id": document.ID,
		"owner":       owner.CoreID,
		"size":        stored.Size,
	}).Info("Document uploaded")

	return converter.DocumentToResponse(document), nil
}

func (u *documentUsecase) ListByCoreID(ctx context.Context, sess session.Session, coreID string) (*dto.DocumentListResponse, error) {
	owner, err := u.ownerFor(ctx, sess, coreID)
	if err != nil {
		return nil, err
	}

	documents, err := u.documentRepo.FindByCoreID(ctx, u.db, owner.CoreID)
	if err != nil {
		u.log.Warnf("Failed to find documents: %+v", err)
		return nil, err
	}

	return &dto.DocumentListResponse{
		Documents: converter.DocumentsToResponses(documents),
		Total:     len(documents),
	}, nil
}

// Delete removes a document. Only its uploader or an admin may do so.
func (u *documentUsecase) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	document, err := u.documentRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find document: %+v", err)
		return err
	}
	if document == nil {
		return ErrDocumentNotFound
	}
	if document.UploaderID != sess.UserID && !sess.IsAdmin() {
		return ErrForbidden
	}

	if err := u.documentRepo.Delete(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete document: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &sess.UserID, entity.AuditActionDocumentDelete, "document", id.String(), converter.DocumentToResponse(document)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.fileStorage.Delete(document.StorageKey); err != nil {
		u.log.Warnf("Failed to remove document file %s: %+v", document.StorageKey, err)
	}

	return nil
}

// ownerFor resolves a core id the session may manage documents for
func (u *documentUsecase) ownerFor(ctx context.Context, sess session.Session, coreID string) (*entity.User, error) {
	owner, err := u.userRepo.FindByCoreID(ctx, u.db, strings.TrimSpace(coreID))
	if err != nil {
		u.log.Warnf("Failed to find document owner: %+v", err)
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	allowed, err := u.access.canActOn(ctx, u.db, sess, owner.ID)
	if err != nil {
		u.log.Warnf("Failed to check document access: %+v", err)
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return owner, nil
}

func contentTypeOf(file UploadedFile) string {
	if file.ContentType != "" && file.ContentType != "application/octet-stream" {
		return file.ContentType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
