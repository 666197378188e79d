// Package storage guarda avatares e recibos no S3 (ou compatível).
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
)

// S3API é o pedaço do client do S3 que o Store usa.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	bucket   string
	endpoint string
	region   string
	client   S3API
	log      *logrus.Logger
}

// NewS3Client monta o client a partir da config. Endpoint vazio usa a AWS.
func NewS3Client(cfg *config.Config) *s3.Client {
	opts := s3.Options{
		Region: cfg.S3Region,
	}
	if cfg.S3AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// NewStore cria o Store. Sem bucket todas as operações viram no-op.
func NewStore(client S3API, cfg *config.Config, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimRight(cfg.S3Endpoint, "/"),
		region:   cfg.S3Region,
		client:   client,
		log:      log,
	}
}

func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

// Put grava o objeto e devolve a URL pública.
func (s *Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}

	return s.URL(key), nil
}

func (s *Store) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ======================================================
// RECIBOS
// ======================================================

type ReceiptLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

type ReceiptPayment struct {
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	Installments int             `json:"installments"`
}

type Receipt struct {
	StudioID   uint             `json:"studio_id"`
	CommandID  uint             `json:"command_id"`
	ClientName string           `json:"client_name,omitempty"`
	Items      []ReceiptLine    `json:"items"`
	Payments   []ReceiptPayment `json:"payments"`
	Gross      decimal.Decimal  `json:"gross"`
	Fee        decimal.Decimal  `json:"fee"`
	Net        decimal.Decimal  `json:"net"`
	FinishedAt time.Time        `json:"finished_at"`
}

func ReceiptKey(r Receipt) string {
	at := r.FinishedAt.UTC()
	return fmt.Sprintf("receipts/v1/%d/%d/%02d/command-%d.json",
		r.StudioID, at.Year(), at.Month(), r.CommandID)
}

// ArchiveReceipt grava o recibo em JSON. Sem bucket não faz nada.
func (s *Store) ArchiveReceipt(ctx context.Context, r Receipt) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("storage: marshal receipt: %w", err)
	}

	key := ReceiptKey(r)
	if _, err := s.Put(ctx, key, "application/json", data); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"studio_id":  r.StudioID,
		"command_id": r.CommandID,
		"key":        key,
	}).Info("receipt archived")
	return nil
}
