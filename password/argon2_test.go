package password

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// fastConfig keeps tests quick while staying above the accepted minimums.
func fastConfig() Config {
	return Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newArgon2(t *testing.T, cfg Config) *Argon2 {
	t.Helper()
	h, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return h
}

func TestArgon2RoundTrip(t *testing.T) {
	h := newArgon2(t, fastConfig())

	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if want := "$argon2id$v=19$m=8192,t=1,p=1$"; !strings.HasPrefix(encoded, want) {
		t.Fatalf("encoded %q lacks prefix %q", encoded, want)
	}

	for _, tc := range []struct {
		password string
		want     bool
	}{
		{"correct horse", true},
		{"correct horse ", false},
		{"Correct horse", false},
	} {
		ok, err := h.Verify(tc.password, encoded)
		if err != nil {
			t.Fatalf("Verify(%q): %v", tc.password, err)
		}
		if ok != tc.want {
			t.Errorf("Verify(%q) = %v, want %v", tc.password, ok, tc.want)
		}
	}

	again, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if again == encoded {
		t.Fatal("two hashes of one password share a salt")
	}
}

func TestArgon2VerifiesWithEmbeddedParameters(t *testing.T) {
	older := newArgon2(t, fastConfig())
	encoded, err := older.Hash("rotate-me")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	stronger := fastConfig()
	stronger.Time = 2
	current := newArgon2(t, stronger)

	ok, err := current.Verify("rotate-me", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify with newer config: ok=%v err=%v", ok, err)
	}
	if up, err := current.NeedsUpgrade(encoded); err != nil || !up {
		t.Fatalf("NeedsUpgrade(current) = %v, %v; want true", up, err)
	}
	if up, err := older.NeedsUpgrade(encoded); err != nil || up {
		t.Fatalf("NeedsUpgrade(older) = %v, %v; want false", up, err)
	}
}

func TestArgon2AcceptsPaddedSegments(t *testing.T) {
	h := newArgon2(t, fastConfig())
	encoded, err := h.Hash("padding")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	parts := strings.Split(encoded, "$")
	for _, i := range []int{4, 5} {
		raw, err := base64.RawStdEncoding.DecodeString(parts[i])
		if err != nil {
			t.Fatalf("decode segment %d: %v", i, err)
		}
		parts[i] = base64.StdEncoding.EncodeToString(raw)
	}

	if ok, err := h.Verify("padding", strings.Join(parts, "$")); err != nil || !ok {
		t.Fatalf("padded: ok=%v err=%v", ok, err)
	}
}

func TestArgon2RejectsMalformedHashes(t *testing.T) {
	h := newArgon2(t, fastConfig())
	const tail = "$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5"

	for name, encoded := range map[string]string{
		"not phc":         "plain-text",
		"argon2i":         "$argon2i$v=19$m=8192,t=1,p=1" + tail,
		"old version":     "$argon2id$v=18$m=8192,t=1,p=1" + tail,
		"missing p":       "$argon2id$v=19$m=8192,t=1" + tail,
		"unknown param":   "$argon2id$v=19$m=8192,t=1,p=1,x=2" + tail,
		"repeated param":  "$argon2id$v=19$m=8192,m=8192,t=1" + tail,
		"memory too low":  "$argon2id$v=19$m=64,t=1,p=1" + tail,
		"bad salt base64": "$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := h.Verify("anything", encoded); !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("err = %v, want ErrMalformedHash", err)
			}
		})
	}
}

func TestArgon2MinimumLength(t *testing.T) {
	h := newArgon2(t, fastConfig())
	if _, err := h.Hash("12345"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("5 chars: err = %v, want ErrTooShort", err)
	}
	if _, err := h.Hash("123456"); err != nil {
		t.Fatalf("6 chars: %v", err)
	}

	cfg := fastConfig()
	cfg.MinLength = 10
	if _, err := newArgon2(t, cfg).Hash("123456"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("custom minimum: err = %v, want ErrTooShort", err)
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
	} {
		cfg := fastConfig()
		mutate(&cfg)
		if _, err := NewArgon2(cfg); err == nil {
			t.Errorf("%s: weak config accepted", name)
		}
	}
}
