package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
)

func TestNewMinIOClient_InvalidEndpoint(t *testing.T) {
	// Test with an invalid endpoint to trigger initialization error
	cfg := MinIOConfig{
		Endpoint:  "invalid-endpoint:port:scheme", // Invalid format
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "test-bucket",
		UseSSL:    false,
	}

	_, err := NewMinIOClient(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error with invalid endpoint, got nil")
	}
}

func TestNewMinIOClient_ConnectionRefused(t *testing.T) {
	// Test connection failure (assuming no MinIO at localhost:12345)
	cfg := MinIOConfig{
		Endpoint:  "localhost:12345",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "test-bucket",
		UseSSL:    false,
	}

	// Note: minio.New() doesn't connect immediately, but BucketExists does.
	_, err := NewMinIOClient(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error connecting to non-existent minio, got nil")
	}
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		useSSL bool
		want   string
	}{
		{
			name: "plain key",
			key:  "DXF/Bracket-A/3mm/part.dxf",
			want: "http://minio.local:9000/parts/DXF/Bracket-A/3mm/part.dxf",
		},
		{
			name: "spaces and symbols in filename",
			key:  "DXF/Bracket-A/3mm/part #2 (rev b).dxf",
			want: "http://minio.local:9000/parts/DXF/Bracket-A/3mm/part%20%232%20%28rev%20b%29.dxf",
		},
		{
			name:   "tls",
			key:    "DXF/a.dxf",
			useSSL: true,
			want:   "https://minio.local:9000/parts/DXF/a.dxf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectURL("minio.local:9000", "parts", tt.key, tt.useSSL)
			if got != tt.want {
				t.Fatalf("ObjectURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPublicReadPolicy(t *testing.T) {
	policy, err := PublicReadPolicy("parts")
	if err != nil {
		t.Fatalf("PublicReadPolicy() error = %v", err)
	}

	var doc bucketPolicy
	if err := json.Unmarshal([]byte(policy), &doc); err != nil {
		t.Fatalf("policy is not valid JSON: %v", err)
	}
	if doc.Version != "2012-10-17" || len(doc.Statement) != 1 {
		t.Fatalf("unexpected policy: %s", policy)
	}
	st := doc.Statement[0]
	if st.Effect != "Allow" || st.Principal != "*" {
		t.Fatalf("unexpected statement: %+v", st)
	}
	if len(st.Action) != 1 || st.Action[0] != "s3:GetObject" {
		t.Fatalf("unexpected actions: %v", st.Action)
	}
	if len(st.Resource) != 1 || st.Resource[0] != "arn:aws:s3:::parts/*" {
		t.Fatalf("unexpected resources: %v", st.Resource)
	}
}

func TestDetectContentType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("cut list for bracket A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := detectContentType(path); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("detectContentType() = %s, want text/plain", got)
	}
	if got := detectContentType(filepath.Join(t.TempDir(), "missing.dxf")); got != defaultContentType {
		t.Fatalf("detectContentType() for missing file = %s, want %s", got, defaultContentType)
	}
}

func loadMinIOConfigFromEnv(t *testing.T) MinIOConfig {
	t.Helper()
	godotenv.Load("../../.env.test")

	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if endpoint == "" || accessKey == "" || secretKey == "" {
		t.Skip("MINIO_ENDPOINT, MINIO_ACCESS_KEY, and MINIO_SECRET_KEY must be set for integration tests")
	}

	return MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    useSSL,
	}
}

func TestMinIOClient_Upload_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := loadMinIOConfigFromEnv(t)
	cfg.Bucket = "test-bucket-" + time.Now().Format("20060102-150405")

	ctx := context.Background()
	client, err := NewMinIOClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to initialize minio client: %v", err)
	}
	if !client.Created() {
		t.Fatal("expected a fresh bucket to be reported as created")
	}
	again, err := NewMinIOClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to reopen minio client: %v", err)
	}
	if again.Created() {
		t.Fatal("expected an existing bucket not to be reported as created")
	}
	if err := client.ApplyPublicReadPolicy(ctx); err != nil {
		t.Fatalf("ApplyPublicReadPolicy() error = %v", err)
	}

	content := "0\nSECTION\n0\nEOF\n"
	local := filepath.Join(t.TempDir(), "hello.dxf")
	if err := os.WriteFile(local, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	key := ObjectKey{Prefix: "Integration Test", Thickness: "1mm", Filename: "hello.dxf"}.Key()
	if err := client.Upload(ctx, key, local); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	obj, err := client.client.GetObject(ctx, cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}

	if string(data) != content {
		t.Fatalf("unexpected content: got %q, want %q", string(data), content)
	}
}
