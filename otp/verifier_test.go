package otp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
	to       []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, message, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, message)
	s.to = append(s.to, to)
	return nil
}

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		t.Fatal("no message sent")
	}
	return strings.TrimPrefix(s.messages[len(s.messages)-1], "Your verification code is: ")
}

func newVerifierTest(t *testing.T) (*Verifier, *recordingSender, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	sender := &recordingSender{}
	return NewVerifier(NewStore(rdb, "", 0, 0), sender), sender, mr
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		n, err := strconv.Atoi(code)
		if err != nil || n < 1000 || n > 9999 || len(code) != 4 {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestIssueStoresAndSends(t *testing.T) {
	v, sender, mr := newVerifierTest(t)
	ctx := context.Background()

	if err := v.Issue(ctx, "+15550001"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := sender.lastCode(t)
	if sender.to[0] != "+15550001" {
		t.Fatalf("sent to %q", sender.to[0])
	}
	if got, _ := mr.Get("verification_code:+15550001"); got != code {
		t.Fatalf("stored %q, sent %q", got, code)
	}
	if ttl := mr.TTL("verification_code:+15550001"); ttl != 5*time.Minute {
		t.Fatalf("code ttl = %v", ttl)
	}
}

func TestCheckFlow(t *testing.T) {
	v, sender, mr := newVerifierTest(t)
	ctx := context.Background()
	phone := "+15550002"

	if err := v.Issue(ctx, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := sender.lastCode(t)

	wrong := "0000"
	ok, err := v.Check(ctx, wrong, phone)
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got ok=%v err=%v", ok, err)
	}
	if got, _ := mr.Get("verification_code:" + phone); got != code {
		t.Fatal("mismatch must not change the stored code")
	}

	ok, err = v.Check(ctx, code, phone)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("verification_code:" + phone); ttl != 10*time.Minute {
		t.Fatalf("verified ttl = %v", ttl)
	}

	verified, err := v.IsVerified(ctx, phone)
	if err != nil || !verified {
		t.Fatalf("expected verified, got %v %v", verified, err)
	}
	verified, _ = v.IsVerified(ctx, phone)
	if !verified {
		t.Fatal("IsVerified must be repeatable")
	}

	if _, err := v.Check(ctx, code, phone); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("second check should report not found, got %v", err)
	}
}

func TestCheckAbsentIsNotFound(t *testing.T) {
	v, _, _ := newVerifierTest(t)
	_, err := v.Check(context.Background(), "1234", "+15550003")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
	if autherr.StatusCode(err) != 404 {
		t.Fatalf("expected 404, got %d", autherr.StatusCode(err))
	}
}

func TestCheckAfterExpiry(t *testing.T) {
	v, sender, mr := newVerifierTest(t)
	ctx := context.Background()
	phone := "+15550004"

	_ = v.Issue(ctx, phone)
	code := sender.lastCode(t)
	mr.FastForward(5*time.Minute + time.Second)

	if _, err := v.Check(ctx, code, phone); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected expired code to be not found, got %v", err)
	}
}

func TestVerifiedStateExpires(t *testing.T) {
	v, sender, mr := newVerifierTest(t)
	ctx := context.Background()
	phone := "+15550005"

	_ = v.Issue(ctx, phone)
	if ok, _ := v.Check(ctx, sender.lastCode(t), phone); !ok {
		t.Fatal("expected match")
	}
	mr.FastForward(10*time.Minute + time.Second)

	verified, err := v.IsVerified(ctx, phone)
	if err != nil || verified {
		t.Fatalf("expected verification to lapse, got %v %v", verified, err)
	}
}

func TestReissueReplacesVerifiedState(t *testing.T) {
	v, sender, _ := newVerifierTest(t)
	ctx := context.Background()
	phone := "+15550006"

	_ = v.Issue(ctx, phone)
	_, _ = v.Check(ctx, sender.lastCode(t), phone)
	_ = v.Issue(ctx, phone)

	verified, _ := v.IsVerified(ctx, phone)
	if verified {
		t.Fatal("a new code must reset the verified state")
	}
}

func TestConsume(t *testing.T) {
	v, sender, _ := newVerifierTest(t)
	ctx := context.Background()
	phone := "+15550007"

	_ = v.Issue(ctx, phone)
	_, _ = v.Check(ctx, sender.lastCode(t), phone)
	if err := v.Consume(ctx, phone); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if verified, _ := v.IsVerified(ctx, phone); verified {
		t.Fatal("expected consumed verification to be gone")
	}
}

func TestIssueSendFailure(t *testing.T) {
	v, sender, _ := newVerifierTest(t)
	sender.err = errors.New("carrier down")

	err := v.Issue(context.Background(), "+15550008")
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}
	if autherr.StatusCode(err) != 400 {
		t.Fatalf("expected 400, got %d", autherr.StatusCode(err))
	}
}

func TestStoreFailureWrapped(t *testing.T) {
	v, _, mr := newVerifierTest(t)
	mr.Close()

	err := v.Issue(context.Background(), "+15550009")
	if err == nil || !strings.HasPrefix(err.Error(), "Failed to create verification code: ") {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatal("expected ErrRedisUnavailable")
	}

	_, err = v.IsVerified(context.Background(), "+15550009")
	if err == nil || !strings.HasPrefix(err.Error(), "Failed to get verification code: ") {
		t.Fatalf("unexpected error %v", err)
	}
}
