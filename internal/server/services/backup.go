package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DefaultBackupLinkTTL is how long a presigned download link stays valid.
const DefaultBackupLinkTTL = 15 * time.Minute

const backupFormatVersion = 1

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// BackupConfig points the backup service at an S3-compatible bucket. An empty
// Bucket disables backups.
type BackupConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

func (c BackupConfig) Enabled() bool {
	return c.Bucket != ""
}

// Backup describes an uploaded export.
type Backup struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// backupDocument is the uploaded JSON. Payloads stay sealed: only the stored
// ciphertext and IV are written, so restoring needs the same master key.
type backupDocument struct {
	Version   int            `json:"version"`
	UserID    string         `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	Secrets   []backupSecret `json:"secrets"`
}

type backupSecret struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Type          models.SecretType `json:"type"`
	Description   string            `json:"description"`
	EncryptedData string            `json:"encryptedData"`
	IV            string            `json:"iv"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type BackupService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	config      BackupConfig
	activity    ActivityRecorder
	logger      logging.Logger
	now         func() time.Time
}

func NewBackupService(runner dbx.Runner, rm repomanager.RepositoryManager, cfg BackupConfig,
	activity ActivityRecorder, logger logging.Logger) *BackupService {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = DefaultBackupLinkTTL
	}
	return &BackupService{
		runner:      runner,
		repomanager: rm,
		config:      cfg,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

func backupKey(userID string, at time.Time) string {
	return fmt.Sprintf("backups/%s/%04d/%02d/%02d/%s.json", userID, at.Year(), at.Month(), at.Day(), uuid.New())
}

func (s *BackupService) s3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.config.Region)}
	if s.config.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.config.AccessKey, s.config.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.config.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Export uploads every secret of userID, still encrypted, and returns a
// presigned link to the uploaded object.
func (s *BackupService) Export(ctx context.Context, userID string) (*Backup, error) {
	if !s.config.Enabled() {
		return nil, common.ErrBackupDisabled
	}

	list, err := s.repomanager.Secrets(s.runner.DB()).List(ctx, userID, "")
	if err != nil {
		return nil, publicError(ctx, s.logger, "list secrets for backup", err)
	}

	now := s.now().UTC()
	doc := backupDocument{
		Version:   backupFormatVersion,
		UserID:    userID,
		CreatedAt: now,
		Secrets:   make([]backupSecret, 0, len(list)),
	}
	for _, sec := range list {
		doc.Secrets = append(doc.Secrets, backupSecret{
			ID:            sec.ID,
			Title:         sec.Title,
			Type:          sec.Type,
			Description:   sec.Description,
			EncryptedData: sec.EncryptedData,
			IV:            sec.IV,
			CreatedAt:     sec.CreatedAt,
			UpdatedAt:     sec.UpdatedAt,
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, publicError(ctx, s.logger, "encode backup", err)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, publicError(ctx, s.logger, "configure backup storage", err)
	}

	bucket := s.config.Bucket
	key := backupKey(userID, now)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, publicError(ctx, s.logger, "upload backup", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.LinkTTL))
	if err != nil {
		return nil, publicError(ctx, s.logger, "presign backup", err)
	}

	s.logger.Info(ctx, "vault backup exported", "user_id", userID, "key", key, "secrets", len(doc.Secrets))
	s.activity.Record(ctx, userID, "Exported vault backup")

	return &Backup{Key: key, URL: req.URL, ExpiresAt: now.Add(s.config.LinkTTL)}, nil
}
