package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Cipher seals secret payloads. Implemented by cryptox.Box.
type Cipher interface {
	Encrypt(plaintext string) (iv, ciphertext string, err error)
	Decrypt(ciphertext, iv string) (string, error)
}

type NewSecret struct {
	Title       string `json:"title"`
	Data        string `json:"data"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SecretPatch changes only the fields that are non-nil.
type SecretPatch struct {
	Title       *string `json:"title,omitempty"`
	Data        *string `json:"data,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DecryptedSecret is a secret together with its plaintext payload.
type DecryptedSecret struct {
	models.Secret
	Data string `json:"data"`
}

type VaultService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	activity    ActivityRecorder
	logger      logging.Logger
}

func NewVaultService(runner dbx.Runner, rm repomanager.RepositoryManager, cipher Cipher,
	activity ActivityRecorder, logger logging.Logger) *VaultService {
	return &VaultService{
		runner:      runner,
		repomanager: rm,
		cipher:      cipher,
		activity:    activity,
		logger:      logger,
	}
}

func (s *VaultService) Create(ctx context.Context, userID string, in NewSecret) (*models.Secret, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.Validationf("title is required")
	}
	if in.Data == "" {
		return nil, common.Validationf("data is required")
	}
	typ, ok := models.ParseSecretType(in.Type)
	if !ok {
		return nil, common.Validationf("unknown secret type %q", in.Type)
	}

	iv, ct, err := s.cipher.Encrypt(in.Data)
	if err != nil {
		return nil, publicError(ctx, s.logger, "encrypt secret", err)
	}

	created, err := s.repomanager.Secrets(s.runner.DB()).Create(ctx, &models.Secret{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         title,
		EncryptedData: ct,
		IV:            iv,
		Type:          typ,
		Description:   in.Description,
	})
	if err != nil {
		return nil, publicError(ctx, s.logger, "create secret", err, common.ErrorNotFound)
	}

	s.activity.Record(ctx, userID, fmt.Sprintf(`Created new secret: "%s"`, created.Title))
	return created, nil
}

// List returns metadata only, newest first. An empty filter lists every type.
func (s *VaultService) List(ctx context.Context, userID, typeFilter string) ([]*models.Secret, error) {
	var typ models.SecretType
	if typeFilter != "" {
		t, ok := models.ParseSecretType(typeFilter)
		if !ok {
			return nil, common.Validationf("unknown secret type %q", typeFilter)
		}
		typ = t
	}

	list, err := s.repomanager.Secrets(s.runner.DB()).List(ctx, userID, typ)
	if err != nil {
		return nil, publicError(ctx, s.logger, "list secrets", err)
	}
	return list, nil
}

// Get returns the secret with its payload decrypted. Ids that are malformed,
// missing or owned by someone else all yield common.ErrorNotFound.
func (s *VaultService) Get(ctx context.Context, userID, id string) (*DecryptedSecret, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	sec, err := s.repomanager.Secrets(s.runner.DB()).GetByID(ctx, userID, id)
	if err != nil {
		return nil, publicError(ctx, s.logger, "get secret", err, common.ErrorNotFound)
	}

	data, err := s.cipher.Decrypt(sec.EncryptedData, sec.IV)
	if err != nil {
		s.logger.Error(ctx, "secret decryption failed", "secret_id", sec.ID, "error", err)
		return nil, common.ErrDecryption
	}

	s.activity.Record(ctx, userID, fmt.Sprintf(`Viewed secret: "%s"`, sec.Title))
	return &DecryptedSecret{Secret: *sec, Data: data}, nil
}

func (s *VaultService) Update(ctx context.Context, userID, id string, patch SecretPatch) (*models.Secret, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	var title string
	if patch.Title != nil {
		title = strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, common.Validationf("title cannot be empty")
		}
	}
	var typ models.SecretType
	if patch.Type != nil {
		if *patch.Type == "" {
			return nil, common.Validationf("type cannot be empty")
		}
		t, ok := models.ParseSecretType(*patch.Type)
		if !ok {
			return nil, common.Validationf("unknown secret type %q", *patch.Type)
		}
		typ = t
	}

	var iv, ct string
	if patch.Data != nil {
		if *patch.Data == "" {
			return nil, common.Validationf("data cannot be empty")
		}
		var err error
		iv, ct, err = s.cipher.Encrypt(*patch.Data)
		if err != nil {
			return nil, publicError(ctx, s.logger, "encrypt secret", err)
		}
	}

	var updated *models.Secret
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Secrets(tx)

		sec, err := repo.GetByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			sec.Title = title
		}
		if patch.Type != nil {
			sec.Type = typ
		}
		if patch.Description != nil {
			sec.Description = *patch.Description
		}
		if patch.Data != nil {
			sec.EncryptedData, sec.IV = ct, iv
		}

		if err := repo.Update(ctx, sec); err != nil {
			return err
		}
		updated = sec
		return nil
	})
	if err != nil {
		return nil, publicError(ctx, s.logger, "update secret", err, common.ErrorNotFound)
	}

	s.activity.Record(ctx, userID, fmt.Sprintf(`Updated secret: "%s"`, updated.Title))
	return updated, nil
}

func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	sec, err := s.repomanager.Secrets(s.runner.DB()).Delete(ctx, userID, id)
	if err != nil {
		return publicError(ctx, s.logger, "delete secret", err, common.ErrorNotFound)
	}

	s.activity.Record(ctx, userID, fmt.Sprintf(`Deleted secret: "%s"`, sec.Title))
	return nil
}
