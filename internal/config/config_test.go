package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", DefaultMaxRetries, cfg.MaxRetries)
	}
	if cfg.SaveStateEvery != DefaultSaveStateEvery {
		t.Errorf("expected checkpoint cadence %d, got %d", DefaultSaveStateEvery, cfg.SaveStateEvery)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected data dir %q, got %q", DefaultDataDir, cfg.DataDir)
	}
	if cfg.RobotsCacheTTL != DefaultRobotsCacheTTL {
		t.Errorf("expected robots TTL %v, got %v", DefaultRobotsCacheTTL, cfg.RobotsCacheTTL)
	}
}

// validFile returns a File with all required keys present.
func validFile() *File {
	respect := true
	ua := "wikicrawl-test/1.0"
	delay := 0.5
	namespaces := []string{"Main", "Category"}
	return &File{
		RespectRobotsTxt:    &respect,
		UserAgent:           &ua,
		DefaultDelaySeconds: &delay,
		TargetNamespaces:    &namespaces,
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("valid file resolves with defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Resolve(validFile())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.RespectRobots {
			t.Error("expected robots compliance enabled")
		}
		if cfg.DefaultDelay != 500*time.Millisecond {
			t.Errorf("expected delay 500ms, got %v", cfg.DefaultDelay)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("missing user_agent names the key", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		f.UserAgent = nil
		if _, err := Resolve(f); !errors.Is(err, ErrMissingUserAgent) {
			t.Errorf("expected ErrMissingUserAgent, got %v", err)
		}
	})

	t.Run("missing respect_robots_txt names the key", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		f.RespectRobotsTxt = nil
		if _, err := Resolve(f); !errors.Is(err, ErrMissingRespectRobots) {
			t.Errorf("expected ErrMissingRespectRobots, got %v", err)
		}
	})

	t.Run("missing default_delay_seconds names the key", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		f.DefaultDelaySeconds = nil
		if _, err := Resolve(f); !errors.Is(err, ErrMissingDefaultDelay) {
			t.Errorf("expected ErrMissingDefaultDelay, got %v", err)
		}
	})

	t.Run("missing target_namespaces names the key", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		f.TargetNamespaces = nil
		if _, err := Resolve(f); !errors.Is(err, ErrMissingTargetNamespaces) {
			t.Errorf("expected ErrMissingTargetNamespaces, got %v", err)
		}
	})

	t.Run("negative delay rejected", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		negative := -1.0
		f.DefaultDelaySeconds = &negative
		if _, err := Resolve(f); !errors.Is(err, ErrInvalidDelay) {
			t.Errorf("expected ErrInvalidDelay, got %v", err)
		}
	})

	t.Run("explicit empty namespaces accepted", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		empty := []string{}
		f.TargetNamespaces = &empty
		cfg, err := Resolve(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TargetNamespaces == nil || len(cfg.TargetNamespaces) != 0 {
			t.Errorf("expected empty non-nil namespaces, got %v", cfg.TargetNamespaces)
		}
	})

	t.Run("optional overrides applied", func(t *testing.T) {
		t.Parallel()

		f := validFile()
		timeout := 10
		retries := 0
		every := 3
		dir := "/tmp/wikis"
		f.TimeoutSeconds = &timeout
		f.MaxRetries = &retries
		f.SaveStateEveryNPages = &every
		f.DataDir = &dir
		f.ExcludePatterns = []string{"Special:", "action=edit"}

		cfg, err := Resolve(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", cfg.Timeout)
		}
		if cfg.MaxRetries != 0 {
			t.Errorf("expected 0 retries, got %d", cfg.MaxRetries)
		}
		if cfg.SaveStateEvery != 3 {
			t.Errorf("expected cadence 3, got %d", cfg.SaveStateEvery)
		}
		if cfg.DataDir != dir {
			t.Errorf("expected data dir %q, got %q", dir, cfg.DataDir)
		}
		if len(cfg.ExcludePatterns) != 2 {
			t.Errorf("expected 2 exclude patterns, got %d", len(cfg.ExcludePatterns))
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("parses a complete file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `respect_robots_txt: true
user_agent: "wikicrawl/1.0 (+https://github.com/fandomtools/wikicrawl)"
default_delay_seconds: 1.5
target_namespaces: ["Main"]
timeout_seconds: 20
exclude_patterns:
  - "action=edit"
headers:
  Cookie: "session=abc"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		f, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg, err := Resolve(f)
		if err != nil {
			t.Fatalf("unexpected resolve error: %v", err)
		}
		if cfg.DefaultDelay != 1500*time.Millisecond {
			t.Errorf("expected delay 1.5s, got %v", cfg.DefaultDelay)
		}
		if cfg.Headers["Cookie"] != "session=abc" {
			t.Errorf("expected cookie header, got %v", cfg.Headers)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("type mismatch on required key fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := "respect_robots_txt: \"yes please\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected a parse error for non-boolean respect_robots_txt")
		}
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("user_agent: x\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := Find(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("missing explicit path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := Find(filepath.Join(t.TempDir(), "absent.yml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}
