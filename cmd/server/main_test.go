package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"ricemill/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := []config.Config{
		{AuthSecret: "short", OperatorPassword: "kovvur-mill-2024"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorPassword: "short"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorPassword: "Password123"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorPassword: "aaaaaaaaaaaa"},
	}
	for _, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("expected weak security config to be rejected: %+v", cfg)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorPassword: "kovvur-mill-2024"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenRepositoryUsesSnapshotDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{SnapshotDir: dir}

	repo, closer, err := openRepository(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	if closer != nil {
		t.Fatalf("file snapshot backend needs no closer")
	}
	intakes, err := repo.ListPaddyIntakes(context.Background())
	if err != nil {
		t.Fatalf("list intakes: %v", err)
	}
	if len(intakes) != 12 {
		t.Fatalf("expected seeded intakes, got %d", len(intakes))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read snapshot dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected seeded registry to be written under %s", filepath.Clean(dir))
	}
}

func TestOpenAttachmentsDefaultsToLocalDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	files, closer, err := openAttachments(context.Background(), config.Config{AttachmentDir: dir}, zap.NewNop())
	if err != nil {
		t.Fatalf("open attachments: %v", err)
	}
	if files == nil || closer != nil {
		t.Fatalf("expected local attachment store without closer")
	}
}
